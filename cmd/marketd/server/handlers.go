package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/coin"
	"github.com/iov-one/weave-market/errors"
	"github.com/iov-one/weave-market/orm"
	"github.com/iov-one/weave-market/x/cash"
	"github.com/iov-one/weave-market/x/market"
	"github.com/iov-one/weave-market/x/nft"
	"github.com/iov-one/weave-market/x/sigs"
	"github.com/patrickmn/go-cache"
)

// MintRequest is the body of POST /nft/mint.
type MintRequest struct {
	Caller weave.Address `json:"caller"`
	URI    string        `json:"uri"`
}

// ApproveRequest is the body of POST /nft/{id}/approve.
type ApproveRequest struct {
	Caller   weave.Address `json:"caller"`
	Operator weave.Address `json:"operator"`
}

// TransferRequest is the body of POST /nft/{id}/transfer.
type TransferRequest struct {
	Caller weave.Address `json:"caller"`
	From   weave.Address `json:"from"`
	To     weave.Address `json:"to"`
}

// CreateItemRequest is the body of POST /market/items. The registry
// defaults to the registry served by the marketplace.
type CreateItemRequest struct {
	Caller   weave.Address `json:"caller"`
	Registry weave.Address `json:"registry,omitempty"`
	AssetID  uint64        `json:"asset_id"`
	Price    coin.Coin     `json:"price"`
	Paid     coin.Coin     `json:"paid"`
}

// BuyRequest is the body of POST /market/items/{id}/buy.
type BuyRequest struct {
	Caller   weave.Address `json:"caller"`
	Registry weave.Address `json:"registry,omitempty"`
	Paid     coin.Coin     `json:"paid"`
}

// SendRequest is the body of POST /cash/send.
type SendRequest struct {
	Caller weave.Address `json:"caller"`
	To     weave.Address `json:"to"`
	Amount coin.Coin     `json:"amount"`
	Memo   string        `json:"memo,omitempty"`
}

// UpdateConfigurationRequest is the body of POST /market/configuration.
type UpdateConfigurationRequest struct {
	Caller weave.Address         `json:"caller"`
	Patch  *market.Configuration `json:"patch"`
}

// Result is returned by every state changing request.
type Result struct {
	ID     uint64        `json:"id,omitempty"`
	Events []weave.Event `json:"events"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Code  uint32 `json:"code"`
	Error string `json:"error"`
}

func (s *Server) handleMint(w http.ResponseWriter, r *http.Request, a *auth, body []byte) {
	var req MintRequest
	if !s.decode(w, body, &req) {
		return
	}
	res := s.deliver(w, a, &nft.MintMsg{URI: req.URI})
	if res == nil {
		return
	}
	s.writeJSON(w, http.StatusCreated, Result{ID: orm.DecodeSequence(res.Data), Events: res.Events})
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request, a *auth, body []byte) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req ApproveRequest
	if !s.decode(w, body, &req) {
		return
	}
	res := s.deliver(w, a, &nft.ApproveMsg{AssetID: id, Operator: req.Operator})
	if res == nil {
		return
	}
	s.writeJSON(w, http.StatusOK, Result{Events: res.Events})
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request, a *auth, body []byte) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req TransferRequest
	if !s.decode(w, body, &req) {
		return
	}
	res := s.deliver(w, a, &nft.TransferMsg{AssetID: id, From: req.From, To: req.To})
	if res == nil {
		return
	}
	s.writeJSON(w, http.StatusOK, Result{Events: res.Events})
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	asset, err := s.market.Asset(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, asset)
}

// handleMetadata serves the token URI of an asset. URIs never change once
// minted, so they are served from the cache when possible.
func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	key := strconv.FormatUint(id, 10)
	if s.metadata != nil {
		if uri, ok := s.metadata.Get(key); ok {
			s.writeJSON(w, http.StatusOK, map[string]string{"uri": uri.(string)})
			return
		}
	}
	uri, err := s.market.MetadataOf(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if s.metadata != nil {
		s.metadata.Set(key, uri, cache.DefaultExpiration)
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"uri": uri})
}

func (s *Server) handleOwnedAssets(w http.ResponseWriter, r *http.Request) {
	addr, ok := s.pathAddress(w, r)
	if !ok {
		return
	}
	assets, err := s.market.OwnedAssets(addr)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if assets == nil {
		assets = []*nft.Asset{}
	}
	s.writeJSON(w, http.StatusOK, assets)
}

func (s *Server) handleListingFee(w http.ResponseWriter, r *http.Request) {
	fee, err := s.market.ListingFee()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"listing_fee": fee})
}

func (s *Server) handleConfiguration(w http.ResponseWriter, r *http.Request) {
	conf, err := s.market.Configuration()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, conf)
}

func (s *Server) handleUpdateConfiguration(w http.ResponseWriter, r *http.Request, a *auth, body []byte) {
	var req UpdateConfigurationRequest
	if !s.decode(w, body, &req) {
		return
	}
	res := s.deliver(w, a, &market.UpdateConfigurationMsg{Patch: req.Patch})
	if res == nil {
		return
	}
	s.writeJSON(w, http.StatusOK, Result{Events: res.Events})
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request, a *auth, body []byte) {
	var req CreateItemRequest
	if !s.decode(w, body, &req) {
		return
	}
	registry := req.Registry
	if len(registry) == 0 {
		registry = s.market.RegistryAddress()
	}
	res := s.deliver(w, a, &market.CreateMarketItemMsg{
		Registry: registry,
		AssetID:  req.AssetID,
		Price:    req.Price,
		Paid:     req.Paid,
	})
	if res == nil {
		return
	}
	s.writeJSON(w, http.StatusCreated, Result{ID: orm.DecodeSequence(res.Data), Events: res.Events})
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request, a *auth, body []byte) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req BuyRequest
	if !s.decode(w, body, &req) {
		return
	}
	registry := req.Registry
	if len(registry) == 0 {
		registry = s.market.RegistryAddress()
	}
	res := s.deliver(w, a, &market.CreateMarketSaleMsg{
		Registry: registry,
		ItemID:   id,
		Paid:     req.Paid,
	})
	if res == nil {
		return
	}
	s.writeJSON(w, http.StatusOK, Result{ID: id, Events: res.Events})
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	item, err := s.market.Item(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleMarketItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.market.FetchMarketItems()
	s.writeItems(w, items, err)
}

func (s *Server) handleMyItems(w http.ResponseWriter, r *http.Request) {
	addr, ok := s.pathAddress(w, r)
	if !ok {
		return
	}
	items, err := s.market.FetchMyNFTs(addr)
	s.writeItems(w, items, err)
}

func (s *Server) handleListedItems(w http.ResponseWriter, r *http.Request) {
	addr, ok := s.pathAddress(w, r)
	if !ok {
		return
	}
	items, err := s.market.FetchItemsListed(addr)
	s.writeItems(w, items, err)
}

func (s *Server) writeItems(w http.ResponseWriter, items []*market.Item, err error) {
	if err != nil {
		s.writeError(w, err)
		return
	}
	if items == nil {
		items = []*market.Item{}
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	addr, ok := s.pathAddress(w, r)
	if !ok {
		return
	}
	balance, err := s.market.Balance(addr)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"address": addr, "balance": balance})
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request, a *auth, body []byte) {
	var req SendRequest
	if !s.decode(w, body, &req) {
		return
	}
	res := s.deliver(w, a, &cash.SendMsg{Destination: req.To, Amount: req.Amount, Memo: req.Memo})
	if res == nil {
		return
	}
	s.writeJSON(w, http.StatusOK, Result{Events: res.Events})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	info, err := s.market.CommitInfo()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"chain_id": s.market.ChainID(),
		"version":  info.Version,
		"hash":     info.Hash,
		"registry": s.market.RegistryAddress(),
		"ledger":   s.market.LedgerAddress(),
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, errors.Wrapf(errors.ErrNotFound, "no route %s %s", r.Method, r.URL.Path))
}

// deliver executes msg on behalf of the authenticated caller. On failure
// the error response is written and nil is returned.
func (s *Server) deliver(w http.ResponseWriter, a *auth, msg weave.Msg) *weave.DeliverResult {
	res, err := s.market.Deliver(a.tx(msg))
	if err != nil {
		s.writeError(w, err)
		return nil
	}
	return res
}

func (s *Server) decode(w http.ResponseWriter, body []byte, dest interface{}) bool {
	if err := json.Unmarshal(body, dest); err != nil {
		s.writeError(w, errors.Wrapf(errors.ErrInput, "decode body: %s", err))
		return false
	}
	return true
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		s.writeError(w, errors.Wrapf(errors.ErrInput, "id: %s", err))
		return 0, false
	}
	return id, true
}

func (s *Server) pathAddress(w http.ResponseWriter, r *http.Request) (weave.Address, bool) {
	addr, err := weave.ParseAddress(mux.Vars(r)["addr"])
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return addr, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("cannot write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code, msg := errors.ABCIInfo(err, s.debug)
	status := httpStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, ErrorResponse{Code: code, Error: msg})
}

// httpStatus maps an error kind to the response status.
func httpStatus(err error) int {
	switch {
	case errors.ErrNotFound.Is(err), market.ErrNotListed.Is(err):
		return http.StatusNotFound
	case errors.ErrUnauthorized.Is(err):
		return http.StatusUnauthorized
	case nft.ErrNotOwner.Is(err):
		return http.StatusForbidden
	case market.ErrAlreadySold.Is(err), errors.ErrState.Is(err), sigs.ErrInvalidSequence.Is(err):
		return http.StatusConflict
	case errors.ErrPanic.Is(err), errors.ErrDatabase.Is(err):
		return http.StatusInternalServerError
	}
	if code, _ := errors.ABCIInfo(err, false); code == 1 {
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

/*
Package server exposes the marketplace over HTTP.

State changing requests carry the caller address in the JSON body and must
be signed: the X-Pubkey header holds the hex encoded ed25519 public key of
the caller, X-Sequence the next nonce of the caller and X-Signature the hex
encoded signature of the canonical request bound to the chain id and that
nonce, see Sign. Every accepted request consumes the nonce, so a request
cannot be replayed.
*/
package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/iov-one/weave-market/app"
	"github.com/patrickmn/go-cache"
	"github.com/tendermint/tendermint/libs/log"
)

// Server serves the marketplace API.
type Server struct {
	market   *app.Marketplace
	logger   log.Logger
	metadata *cache.Cache
	debug    bool
}

// New returns a server. Asset metadata never changes, so it is cached for
// the given duration. A zero duration disables the cache.
func New(market *app.Marketplace, logger log.Logger, metadataTTL time.Duration, debug bool) *Server {
	var metadata *cache.Cache
	if metadataTTL > 0 {
		metadata = cache.New(metadataTTL, 2*metadataTTL)
	}
	return &Server{
		market:   market,
		logger:   logger,
		metadata: metadata,
		debug:    debug,
	}
}

// Router returns the HTTP handler of all API routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestID)

	r.HandleFunc("/nft/mint", s.signed(s.handleMint)).Methods(http.MethodPost)
	r.HandleFunc("/nft/{id:[0-9]+}/approve", s.signed(s.handleApprove)).Methods(http.MethodPost)
	r.HandleFunc("/nft/{id:[0-9]+}/transfer", s.signed(s.handleTransfer)).Methods(http.MethodPost)
	r.HandleFunc("/nft/{id:[0-9]+}", s.handleAsset).Methods(http.MethodGet)
	r.HandleFunc("/nft/{id:[0-9]+}/metadata", s.handleMetadata).Methods(http.MethodGet)
	r.HandleFunc("/nft/owned/{addr}", s.handleOwnedAssets).Methods(http.MethodGet)

	r.HandleFunc("/market/fee", s.handleListingFee).Methods(http.MethodGet)
	r.HandleFunc("/market/items", s.handleMarketItems).Methods(http.MethodGet)
	r.HandleFunc("/market/items", s.signed(s.handleCreateItem)).Methods(http.MethodPost)
	r.HandleFunc("/market/items/{id:[0-9]+}", s.handleItem).Methods(http.MethodGet)
	r.HandleFunc("/market/items/{id:[0-9]+}/buy", s.signed(s.handleBuy)).Methods(http.MethodPost)
	r.HandleFunc("/market/owned/{addr}", s.handleMyItems).Methods(http.MethodGet)
	r.HandleFunc("/market/listed/{addr}", s.handleListedItems).Methods(http.MethodGet)
	r.HandleFunc("/market/configuration", s.handleConfiguration).Methods(http.MethodGet)
	r.HandleFunc("/market/configuration", s.signed(s.handleUpdateConfiguration)).Methods(http.MethodPost)

	r.HandleFunc("/cash/balance/{addr}", s.handleBalance).Methods(http.MethodGet)
	r.HandleFunc("/cash/send", s.signed(s.handleSend)).Methods(http.MethodPost)

	r.HandleFunc("/auth/nonce/{addr}", s.handleNonce).Methods(http.MethodGet)

	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
	return r
}

package market

import (
	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/errors"
	"github.com/iov-one/weave-market/gconf"
	"github.com/iov-one/weave-market/orm"
)

// RegisterRoutes registers handlers for all marketplace messages.
func RegisterRoutes(r weave.Registry, ledger *Ledger) {
	r.Handle(&CreateMarketItemMsg{}, CreateItemHandler{ledger: ledger})
	r.Handle(&CreateMarketSaleMsg{}, CreateSaleHandler{ledger: ledger})
	r.Handle(&UpdateConfigurationMsg{}, gconf.NewUpdateConfigurationHandler(ConfigPkg, newConfiguration))
}

func newConfiguration() gconf.OwnedConfig {
	return &Configuration{}
}

// CreateItemHandler lists assets. The ID of the new item is returned as the
// result data, sequence encoded.
type CreateItemHandler struct {
	ledger *Ledger
}

var _ weave.Handler = CreateItemHandler{}

func (h CreateItemHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	var msg CreateMarketItemMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &weave.CheckResult{}, nil
}

func (h CreateItemHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	var msg CreateMarketItemMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	id, events, err := h.ledger.CreateMarketItem(db, msg.Registry, msg.AssetID, msg.Price, tx.GetCaller(), msg.Paid)
	if err != nil {
		return nil, err
	}
	return &weave.DeliverResult{Data: orm.EncodeSequence(id), Events: events}, nil
}

// CreateSaleHandler sells listed items to the caller.
type CreateSaleHandler struct {
	ledger *Ledger
}

var _ weave.Handler = CreateSaleHandler{}

func (h CreateSaleHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	var msg CreateMarketSaleMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &weave.CheckResult{}, nil
}

func (h CreateSaleHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	var msg CreateMarketSaleMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	events, err := h.ledger.CreateMarketSale(db, msg.Registry, msg.ItemID, tx.GetCaller(), msg.Paid)
	if err != nil {
		return nil, err
	}
	return &weave.DeliverResult{Data: orm.EncodeSequence(msg.ItemID), Events: events}, nil
}

package cash

import (
	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/errors"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r weave.Registry, bank Bank) {
	r.Handle(&SendMsg{}, NewSendHandler(bank))
}

// SendHandler will handle sending coins
type SendHandler struct {
	bank Bank
}

var _ weave.Handler = SendHandler{}

// NewSendHandler creates a handler for SendMsg
func NewSendHandler(bank Bank) SendHandler {
	return SendHandler{bank: bank}
}

// Check just verifies it is properly formed
func (h SendHandler) Check(ctx weave.Context, store weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{}, nil
}

// Deliver moves the tokens from the caller to receiver if
// all preconditions are met
func (h SendHandler) Deliver(ctx weave.Context, store weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := h.validate(tx)
	if err != nil {
		return nil, err
	}
	src := tx.GetCaller()
	if err := MoveCoins(store, h.bank, src, msg.Destination, msg.Amount); err != nil {
		return nil, err
	}
	ev := weave.NewEvent("cash/sent",
		"from", src,
		"to", msg.Destination,
		"amount", msg.Amount,
	)
	return &weave.DeliverResult{Events: []weave.Event{ev}}, nil
}

func (h SendHandler) validate(tx weave.Tx) (*SendMsg, error) {
	var msg SendMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := tx.GetCaller().Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "caller required")
	}
	return &msg, nil
}

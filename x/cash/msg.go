package cash

import (
	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/codec"
	"github.com/iov-one/weave-market/coin"
	"github.com/iov-one/weave-market/errors"
)

// Ensure we implement the Msg interface
var _ weave.Msg = (*SendMsg)(nil)

const maxMemoSize int = 128

// SendMsg moves funds from the caller to the destination.
type SendMsg struct {
	Destination weave.Address `json:"destination"`
	Amount      coin.Coin     `json:"amount"`
	Memo        string        `json:"memo,omitempty"`
}

// Path returns the routing path for this message
func (SendMsg) Path() string {
	return "cash/send"
}

// Validate makes sure that this is sensible
func (m *SendMsg) Validate() error {
	var errs error
	if !m.Amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount", errors.Wrap(errors.ErrAmount, "must be positive"))
	} else {
		errs = errors.AppendField(errs, "Amount", m.Amount.Validate())
	}
	errs = errors.AppendField(errs, "Destination", m.Destination.Validate())
	if len(m.Memo) > maxMemoSize {
		errs = errors.AppendField(errs, "Memo", errors.Wrap(errors.ErrInput, "memo too long"))
	}
	return errs
}

func (m *SendMsg) Marshal() ([]byte, error) {
	var b codec.Buffer
	b.Bytes(1, m.Destination)
	if err := b.Message(2, &m.Amount); err != nil {
		return nil, err
	}
	b.String(3, m.Memo)
	return b.Result(), nil
}

func (m *SendMsg) Unmarshal(raw []byte) error {
	*m = SendMsg{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			m.Destination = d.Bytes()
		case 2:
			d.Message(&m.Amount)
		case 3:
			m.Memo = d.String()
		default:
			d.Skip()
		}
	}
	return d.Err()
}

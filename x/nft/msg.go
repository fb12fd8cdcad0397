package nft

import (
	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/codec"
	"github.com/iov-one/weave-market/errors"
)

var (
	_ weave.Msg = (*MintMsg)(nil)
	_ weave.Msg = (*ApproveMsg)(nil)
	_ weave.Msg = (*TransferMsg)(nil)
)

const maxURISize = 2048

// MintMsg creates a new asset owned by the caller.
type MintMsg struct {
	URI string `json:"uri"`
}

func (MintMsg) Path() string {
	return "nft/mint"
}

func (m *MintMsg) Validate() error {
	if len(m.URI) > maxURISize {
		return errors.Field("URI", errors.ErrInput, "longer than %d bytes", maxURISize)
	}
	return nil
}

func (m *MintMsg) Marshal() ([]byte, error) {
	var b codec.Buffer
	b.String(1, m.URI)
	return b.Result(), nil
}

func (m *MintMsg) Unmarshal(raw []byte) error {
	*m = MintMsg{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		if d.Field() == 1 {
			m.URI = d.String()
		} else {
			d.Skip()
		}
	}
	return d.Err()
}

// ApproveMsg sets the operator of an asset owned by the caller. An empty
// operator clears the approval.
type ApproveMsg struct {
	AssetID  uint64        `json:"asset_id"`
	Operator weave.Address `json:"operator,omitempty"`
}

func (ApproveMsg) Path() string {
	return "nft/approve"
}

// Validate leaves the asset ID to the registry, an unknown asset is
// reported as ErrNotFound.
func (m *ApproveMsg) Validate() error {
	if len(m.Operator) == 0 {
		return nil
	}
	return errors.Field("Operator", m.Operator.Validate(), "")
}

func (m *ApproveMsg) Marshal() ([]byte, error) {
	var b codec.Buffer
	b.Uint64(1, m.AssetID)
	b.Bytes(2, m.Operator)
	return b.Result(), nil
}

func (m *ApproveMsg) Unmarshal(raw []byte) error {
	*m = ApproveMsg{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			m.AssetID = d.Uint64()
		case 2:
			m.Operator = d.Bytes()
		default:
			d.Skip()
		}
	}
	return d.Err()
}

// TransferMsg moves an asset. The caller must be the owner or the approved
// operator.
type TransferMsg struct {
	AssetID uint64        `json:"asset_id"`
	From    weave.Address `json:"from"`
	To      weave.Address `json:"to"`
}

func (TransferMsg) Path() string {
	return "nft/transfer"
}

func (m *TransferMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "From", m.From.Validate())
	errs = errors.AppendField(errs, "To", m.To.Validate())
	return errs
}

func (m *TransferMsg) Marshal() ([]byte, error) {
	var b codec.Buffer
	b.Uint64(1, m.AssetID)
	b.Bytes(2, m.From)
	b.Bytes(3, m.To)
	return b.Result(), nil
}

func (m *TransferMsg) Unmarshal(raw []byte) error {
	*m = TransferMsg{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			m.AssetID = d.Uint64()
		case 2:
			m.From = d.Bytes()
		case 3:
			m.To = d.Bytes()
		default:
			d.Skip()
		}
	}
	return d.Err()
}

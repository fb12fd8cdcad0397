package weavetest

import "github.com/iov-one/weave-market"

// Tx is a transaction carrying Msg on behalf of Caller. When Err is set,
// GetMsg fails with it, which simulates a transaction that cannot be decoded.
type Tx struct {
	Msg    weave.Msg
	Caller weave.Address
	Err    error
}

var _ weave.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (weave.Msg, error) {
	if tx.Err != nil {
		return nil, tx.Err
	}
	return tx.Msg, nil
}

func (tx *Tx) GetCaller() weave.Address { return tx.Caller }

// Msg is a message routed by RoutePath. Its serialized form is kept as
// is, and every method fails with Err when it is set. Handy for router and
// decorator tests that do not care about message content.
type Msg struct {
	RoutePath  string
	Serialized []byte
	Err        error
}

var _ weave.Msg = (*Msg)(nil)

func (m *Msg) Path() string { return m.RoutePath }

func (m *Msg) Validate() error { return m.Err }

func (m *Msg) Marshal() ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Serialized, nil
}

func (m *Msg) Unmarshal(raw []byte) error {
	if m.Err != nil {
		return m.Err
	}
	m.Serialized = raw
	return nil
}

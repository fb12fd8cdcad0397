package weave

import (
	"testing"

	"github.com/iov-one/weave-market/errors"
	"github.com/iov-one/weave-market/weavetest/assert"
)

type demoMsg struct {
	Num int
	Err error
}

func (demoMsg) Path() string               { return "demo/msg" }
func (m demoMsg) Validate() error          { return m.Err }
func (demoMsg) Marshal() ([]byte, error)   { return []byte("demo"), nil }
func (*demoMsg) Unmarshal(bz []byte) error { return nil }

var _ Msg = (*demoMsg)(nil)

type otherMsg struct {
	demoMsg
}

type demoTx struct {
	msg Msg
	err error
}

func (tx demoTx) GetMsg() (Msg, error) { return tx.msg, tx.err }
func (tx demoTx) GetCaller() Address   { return nil }

func TestLoadMsg(t *testing.T) {
	cases := map[string]struct {
		tx      Tx
		dest    func() interface{}
		wantNum int
		wantErr *errors.Error
	}{
		"matching destination": {
			tx:      demoTx{msg: &demoMsg{Num: 3}},
			dest:    func() interface{} { return &demoMsg{} },
			wantNum: 3,
		},
		"generic destination": {
			tx:      demoTx{msg: &demoMsg{Num: 4}},
			dest:    func() interface{} { var m Msg; return &m },
			wantNum: 4,
		},
		"invalid message": {
			tx:      demoTx{msg: &demoMsg{Num: 5, Err: errors.ErrAmount}},
			dest:    func() interface{} { return &demoMsg{} },
			wantErr: errors.ErrAmount,
		},
		"wrong type": {
			tx:      demoTx{msg: &demoMsg{}},
			dest:    func() interface{} { return &otherMsg{} },
			wantErr: errors.ErrType,
		},
		"not a pointer": {
			tx:      demoTx{msg: &demoMsg{}},
			dest:    func() interface{} { return demoMsg{} },
			wantErr: errors.ErrType,
		},
		"no message": {
			tx:      demoTx{},
			dest:    func() interface{} { return &demoMsg{} },
			wantErr: errors.ErrMsg,
		},
		"transaction error": {
			tx:      demoTx{err: errors.ErrHuman},
			dest:    func() interface{} { return &demoMsg{} },
			wantErr: errors.ErrHuman,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			dest := tc.dest()
			err := LoadMsg(tc.tx, dest)
			assert.IsErr(t, tc.wantErr, err)
			if tc.wantErr != nil {
				return
			}
			switch d := dest.(type) {
			case *demoMsg:
				assert.Equal(t, tc.wantNum, d.Num)
			case *Msg:
				assert.Equal(t, tc.wantNum, (*d).(*demoMsg).Num)
			}
		})
	}
}

package assert

import (
	"fmt"
	"testing"

	"github.com/iov-one/weave-market/errors"
)

// tmock records failures instead of stopping the test.
type tmock struct {
	failcalls int
}

func (m *tmock) Helper()                                {}
func (m *tmock) Fatal(args ...interface{})              { m.failcalls++ }
func (m *tmock) Fatalf(format string, a ...interface{}) { m.failcalls++ }

func TestIsErr(t *testing.T) {
	cases := map[string]struct {
		want     error
		got      error
		wantFail bool
	}{
		"same error":      {want: errors.ErrEmpty, got: errors.ErrEmpty},
		"compared to nil": {want: nil, got: errors.ErrEmpty, wantFail: true},
		"both nil":        {want: nil, got: nil},
		"wrapped":         {want: errors.ErrEmpty, got: errors.Wrap(errors.ErrEmpty, "test")},
		"different kind":  {want: errors.ErrEmpty, got: errors.ErrState, wantFail: true},
		"plain error":     {want: errors.ErrEmpty, got: fmt.Errorf("empty"), wantFail: true},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			mock := &tmock{}
			IsErr(mock, tc.want, tc.got)
			if failed := mock.failcalls > 0; failed != tc.wantFail {
				t.Fatalf("want failure %v, got %v", tc.wantFail, failed)
			}
		})
	}
}

func TestNil(t *testing.T) {
	var nilErr error
	var nilPtr *int
	cases := map[string]struct {
		value    interface{}
		wantFail bool
	}{
		"nil":           {value: nil},
		"nil error":     {value: nilErr},
		"typed nil":     {value: nilPtr},
		"integer":       {value: 0, wantFail: true},
		"non nil error": {value: errors.ErrHuman, wantFail: true},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			mock := &tmock{}
			Nil(mock, tc.value)
			if failed := mock.failcalls > 0; failed != tc.wantFail {
				t.Fatalf("want failure %v, got %v", tc.wantFail, failed)
			}
		})
	}
}

func TestPanics(t *testing.T) {
	mock := &tmock{}
	Panics(mock, func() { panic("boom") })
	Panics(mock, func() {})
	if mock.failcalls != 1 {
		t.Fatalf("want one failure, got %d", mock.failcalls)
	}
}

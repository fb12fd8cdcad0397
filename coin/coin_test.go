package coin

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/weave-market/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddSubtract(t *testing.T) {
	cases := map[string]struct {
		a, b    Coin
		sum     Coin
		sumErr  *errors.Error
		diff    Coin
		diffErr *errors.Error
	}{
		"same currency": {
			a:    NewCoin(10, "MKT"),
			b:    NewCoin(4, "MKT"),
			sum:  NewCoin(14, "MKT"),
			diff: NewCoin(6, "MKT"),
		},
		"insufficient": {
			a:       NewCoin(3, "MKT"),
			b:       NewCoin(4, "MKT"),
			sum:     NewCoin(7, "MKT"),
			diffErr: errors.ErrAmount,
		},
		"foreign currency": {
			a:       NewCoin(3, "MKT"),
			b:       NewCoin(1, "ETH"),
			sumErr:  errors.ErrCurrency,
			diffErr: errors.ErrCurrency,
		},
		"overflow": {
			a:      NewCoin(^uint64(0), "MKT"),
			b:      NewCoin(1, "MKT"),
			sumErr: errors.ErrOverflow,
			diff:   NewCoin(^uint64(0)-1, "MKT"),
		},
		"empty coin is neutral": {
			a:       Coin{},
			b:       NewCoin(5, "MKT"),
			sum:     NewCoin(5, "MKT"),
			diffErr: errors.ErrCurrency,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			sum, err := tc.a.Add(tc.b)
			if tc.sumErr != nil {
				assert.True(t, tc.sumErr.Is(err), "got %v", err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.sum, sum)
			}

			diff, err := tc.a.Subtract(tc.b)
			if tc.diffErr != nil {
				assert.True(t, tc.diffErr.Is(err), "got %v", err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.diff, diff)
			}
		})
	}
}

func TestHumanFormat(t *testing.T) {
	cases := map[string]struct {
		human   string
		want    Coin
		wantErr *errors.Error
		// canonical is the String output when it differs from human.
		canonical string
	}{
		"whole":             {human: "3 MKT", want: NewCoin(3*FracUnit, "MKT")},
		"listing fee":       {human: "0.025 MKT", want: NewCoin(25000000, "MKT")},
		"smallest unit":     {human: "0.000000001 MKT", want: NewCoin(1, "MKT")},
		"no space":          {human: "1.5MKT", want: NewCoin(1500000000, "MKT"), canonical: "1.5 MKT"},
		"missing ticker":    {human: "1", wantErr: errors.ErrInput},
		"too many decimals": {human: "0.0000000001 MKT", wantErr: errors.ErrInput},
		"negative":          {human: "-1 MKT", wantErr: errors.ErrInput},
		"too large":         {human: "99999999999999999999 MKT", wantErr: errors.ErrOverflow},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := ParseHumanFormat(tc.human)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)

			canonical := tc.canonical
			if canonical == "" {
				canonical = tc.human
			}
			assert.Equal(t, canonical, got.String())
		})
	}
}

func TestCoinJSON(t *testing.T) {
	raw, err := json.Marshal(NewCoin(25000000, "MKT"))
	require.NoError(t, err)
	assert.Equal(t, `"0.025 MKT"`, string(raw))

	var c Coin
	require.NoError(t, json.Unmarshal([]byte(`{"Ticker": "MKT", "Amount": 7}`), &c))
	assert.Equal(t, NewCoin(7, "MKT"), c)

	require.NoError(t, json.Unmarshal(raw, &c))
	assert.Equal(t, NewCoin(25000000, "MKT"), c)
}

func TestCoinSerialization(t *testing.T) {
	c := NewCoin(1234567, "MKT")
	raw, err := c.Marshal()
	require.NoError(t, err)

	var got Coin
	require.NoError(t, got.Unmarshal(raw))
	assert.Equal(t, c, got)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, NewCoin(0, "MKT").Validate())
	assert.True(t, errors.ErrCurrency.Is(NewCoin(1, "mkt").Validate()))
	assert.True(t, errors.ErrCurrency.Is(Coin{Amount: 1}.Validate()))
}

/*
Package coin defines the currency amount used for prices, listing fees and
balances.

A Coin is an unsigned amount of the smallest currency unit. One whole unit
is FracUnit smallest units, so "0.025 MKT" is 25000000 units.
*/
package coin

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/iov-one/weave-market/codec"
	"github.com/iov-one/weave-market/errors"
)

// IsCC is the RegExp to ensure valid currency codes
var IsCC = regexp.MustCompile(`^[A-Z]{3,4}$`).MatchString

const (
	// FracUnit is the number of smallest units in one whole unit.
	FracUnit uint64 = 1000000000 // 10^9
	// fracDigits is the number of decimal places of FracUnit.
	fracDigits = 9
)

// Coin is an amount of a single currency.
type Coin struct {
	Ticker string
	Amount uint64
}

// NewCoin creates a new coin object
func NewCoin(amount uint64, ticker string) Coin {
	return Coin{Ticker: ticker, Amount: amount}
}

// Add combines two coins.
// Returns error if they are of different
// currencies, or if the combination would cause
// an overflow
func (c Coin) Add(o Coin) (Coin, error) {
	// A zero value without a ticker has no influence on the result.
	if c.Ticker == "" && c.IsZero() {
		return o, nil
	}
	if o.Ticker == "" && o.IsZero() {
		return c, nil
	}
	if !c.SameType(o) {
		return Coin{}, errors.Wrapf(errors.ErrCurrency, "adding %s to %s", o.Ticker, c.Ticker)
	}
	if c.Amount > math.MaxUint64-o.Amount {
		return Coin{}, errors.Wrapf(errors.ErrOverflow, "%s + %s", c, o)
	}
	c.Amount += o.Amount
	return c, nil
}

// Subtract given amount. Going below zero returns ErrAmount.
func (c Coin) Subtract(o Coin) (Coin, error) {
	if o.IsZero() {
		return c, nil
	}
	if !c.SameType(o) {
		return Coin{}, errors.Wrapf(errors.ErrCurrency, "subtracting %s from %s", o.Ticker, c.Ticker)
	}
	if c.Amount < o.Amount {
		return Coin{}, errors.Wrapf(errors.ErrAmount, "%s is less than %s", c, o)
	}
	c.Amount -= o.Amount
	return c, nil
}

// Equals returns true if all fields are identical
func (c Coin) Equals(o Coin) bool {
	return c.Ticker == o.Ticker && c.Amount == o.Amount
}

// IsZero returns true if the amount is 0
func (c Coin) IsZero() bool {
	return c.Amount == 0
}

// IsPositive returns true if the value is greater than 0
func (c Coin) IsPositive() bool {
	return c.Amount > 0
}

// IsGTE returns true if c is same type and at least
// as large as o.
func (c Coin) IsGTE(o Coin) bool {
	return c.SameType(o) && c.Amount >= o.Amount
}

// SameType returns true if they have the same currency
func (c Coin) SameType(o Coin) bool {
	return c.Ticker == o.Ticker
}

// Clone provides an independent copy of a coin pointer
func (c *Coin) Clone() *Coin {
	if c == nil {
		return nil
	}
	cpy := *c
	return &cpy
}

// Validate ensures that the coin has a valid currency code. Zero amounts are
// valid, so you may want to make other checks in your business logic.
func (c Coin) Validate() error {
	if !IsCC(c.Ticker) {
		return errors.Wrapf(errors.ErrCurrency, "invalid currency: %q", c.Ticker)
	}
	return nil
}

// Marshal encodes the coin using protobuf wire format.
func (c *Coin) Marshal() ([]byte, error) {
	var b codec.Buffer
	b.String(1, c.Ticker)
	b.Uint64(2, c.Amount)
	return b.Result(), nil
}

// Unmarshal decodes a coin encoded with Marshal.
func (c *Coin) Unmarshal(raw []byte) error {
	*c = Coin{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			c.Ticker = d.String()
		case 2:
			c.Amount = d.Uint64()
		default:
			d.Skip()
		}
	}
	return d.Err()
}

// MarshalJSON uses the human readable format.
func (c Coin) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Coin) UnmarshalJSON(raw []byte) error {
	// Prioritize human readable format that is a string in format
	// "<whole>[.<fractional>] <ticker>"
	var human string
	if err := json.Unmarshal(raw, &human); err == nil {
		parsed, err := ParseHumanFormat(human)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	// Fallback into the structured format. Because UnmarshalJSON method
	// is provided, we can no longer use Coin type for this.
	var coin struct {
		Ticker string
		Amount uint64
	}
	if err := json.Unmarshal(raw, &coin); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot decode coin: %s", err)
	}
	c.Ticker = coin.Ticker
	c.Amount = coin.Amount
	return nil
}

// String provides a human readable representation of the coin. For a valid
// coin the result can be parsed back with ParseHumanFormat.
func (c Coin) String() string {
	var b bytes.Buffer

	io.WriteString(&b, strconv.FormatUint(c.Amount/FracUnit, 10))

	if f := c.Amount % FracUnit; f != 0 {
		s := strconv.FormatUint(f, 10)
		// Add leading zeros to convert it to a floating point number.
		s = "." + strings.Repeat("0", fracDigits-len(s)) + s
		// Remove trailing zeros as they provide no information.
		s = strings.TrimRight(s, "0")
		io.WriteString(&b, s)
	}

	if c.Ticker != "" {
		io.WriteString(&b, " "+c.Ticker)
	}
	return b.String()
}

// ParseHumanFormat parse a human readable coin representation. Accepted format
// is a string:
//
//	"<whole>[.<fractional>] <ticker>"
func ParseHumanFormat(h string) (Coin, error) {
	var c Coin
	result := humanCoinFormatRx.FindStringSubmatch(strings.TrimSpace(h))
	if result == nil {
		return c, errors.Wrapf(errors.ErrInput, "invalid coin format %q", h)
	}

	whole, err := strconv.ParseUint(result[1], 10, 64)
	if err != nil {
		return c, errors.Wrapf(errors.ErrOverflow, "whole value: %s", err)
	}
	var frac uint64
	if s := result[2]; s != "" {
		s = s + strings.Repeat("0", fracDigits-len(s))
		frac, err = strconv.ParseUint(s, 10, 64)
		if err != nil {
			return c, errors.Wrapf(errors.ErrInput, "fractional value: %s", err)
		}
	}
	if whole > (math.MaxUint64-frac)/FracUnit {
		return c, errors.Wrapf(errors.ErrOverflow, "%q", h)
	}

	c.Amount = whole*FracUnit + frac
	c.Ticker = result[3]
	return c, nil
}

var humanCoinFormatRx = regexp.MustCompile(`^(\d+)(?:\.(\d{1,9}))?\s*([A-Z]{3,4})$`)

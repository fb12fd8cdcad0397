package cash

import (
	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/coin"
	"github.com/iov-one/weave-market/errors"
	"github.com/iov-one/weave-market/orm"
)

// Bank is the payment capability. Debit and Credit must be called on the
// same store within a single operation; any error aborts that operation.
type Bank interface {
	// Balance returns the funds held by given address.
	Balance(db weave.ReadOnlyKVStore, addr weave.Address) (coin.Coin, error)
	// Debit takes given amount from the address. ErrAmount is returned on
	// insufficient funds.
	Debit(db weave.KVStore, from weave.Address, amount coin.Coin) error
	// Credit adds given amount to the address. The recipient may reject
	// the funds.
	Credit(db weave.KVStore, to weave.Address, amount coin.Coin) error
}

// Guard decides whether an address accepts incoming funds.
type Guard interface {
	AcceptCredit(db weave.ReadOnlyKVStore, to weave.Address, amount coin.Coin) error
}

// GuardFunc adapts a function to the Guard interface.
type GuardFunc func(db weave.ReadOnlyKVStore, to weave.Address, amount coin.Coin) error

// AcceptCredit calls fn.
func (fn GuardFunc) AcceptCredit(db weave.ReadOnlyKVStore, to weave.Address, amount coin.Coin) error {
	return fn(db, to, amount)
}

// RejectFunds returns a guard refusing any credit to given addresses.
func RejectFunds(addrs ...weave.Address) Guard {
	return GuardFunc(func(db weave.ReadOnlyKVStore, to weave.Address, amount coin.Coin) error {
		for _, a := range addrs {
			if a.Equals(to) {
				return errors.Wrapf(errors.ErrUnauthorized, "%s rejects funds", to)
			}
		}
		return nil
	})
}

// Controller is the Bank implementation backed by the wallet bucket.
type Controller struct {
	bucket orm.ModelBucket
	guard  Guard
}

var _ Bank = (*Controller)(nil)

// NewController returns a controller. The guard is optional; without one
// every credit is accepted.
func NewController(guard Guard) *Controller {
	return &Controller{
		bucket: NewWalletBucket(),
		guard:  guard,
	}
}

func (c *Controller) wallet(db weave.ReadOnlyKVStore, addr weave.Address) (*Wallet, error) {
	if err := addr.Validate(); err != nil {
		return nil, errors.Wrap(err, "wallet address")
	}
	var w Wallet
	switch err := c.bucket.One(db, walletKey(addr), &w); {
	case err == nil:
		return &w, nil
	case errors.ErrNotFound.Is(err):
		conf, err := LoadConfiguration(db)
		if err != nil {
			return nil, err
		}
		return &Wallet{Balance: coin.Coin{Ticker: conf.Ticker}}, nil
	default:
		return nil, err
	}
}

func (c *Controller) Balance(db weave.ReadOnlyKVStore, addr weave.Address) (coin.Coin, error) {
	w, err := c.wallet(db, addr)
	if err != nil {
		return coin.Coin{}, err
	}
	return w.Balance, nil
}

func (c *Controller) Debit(db weave.KVStore, from weave.Address, amount coin.Coin) error {
	w, err := c.wallet(db, from)
	if err != nil {
		return err
	}
	if !w.Balance.SameType(amount) {
		return errors.Wrapf(errors.ErrCurrency, "cannot pay %s from a %s wallet", amount, w.Balance.Ticker)
	}
	if !w.Balance.IsGTE(amount) {
		return errors.Wrapf(errors.ErrAmount, "insufficient funds: %s has %s, needs %s", from, w.Balance, amount)
	}
	if w.Balance, err = w.Balance.Subtract(amount); err != nil {
		return err
	}
	_, err = c.bucket.Put(db, walletKey(from), w)
	return err
}

func (c *Controller) Credit(db weave.KVStore, to weave.Address, amount coin.Coin) error {
	if c.guard != nil {
		if err := c.guard.AcceptCredit(db, to, amount); err != nil {
			return errors.Wrap(err, "credit rejected")
		}
	}
	return c.Issue(db, to, amount)
}

// Issue adds funds to an address bypassing the guard. It is used to load the
// genesis balances.
func (c *Controller) Issue(db weave.KVStore, to weave.Address, amount coin.Coin) error {
	w, err := c.wallet(db, to)
	if err != nil {
		return err
	}
	if !w.Balance.SameType(amount) {
		return errors.Wrapf(errors.ErrCurrency, "cannot add %s to a %s wallet", amount, w.Balance.Ticker)
	}
	if w.Balance, err = w.Balance.Add(amount); err != nil {
		return err
	}
	_, err = c.bucket.Put(db, walletKey(to), w)
	return err
}

// MoveCoins moves the given amount from src to dest.
// If src doesn't have sufficient coins, or dest rejects them, it fails.
// Moving a zero amount is a no-op.
func MoveCoins(db weave.KVStore, bank Bank, src, dest weave.Address, amount coin.Coin) error {
	if amount.IsZero() {
		return nil
	}
	if err := bank.Debit(db, src, amount); err != nil {
		return errors.Wrap(err, "debit")
	}
	if err := bank.Credit(db, dest, amount); err != nil {
		return errors.Wrap(err, "credit")
	}
	return nil
}

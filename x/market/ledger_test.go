package market

import (
	"testing"

	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/coin"
	"github.com/iov-one/weave-market/errors"
	"github.com/iov-one/weave-market/gconf"
	"github.com/iov-one/weave-market/store"
	"github.com/iov-one/weave-market/weavetest"
	"github.com/iov-one/weave-market/x/cash"
	"github.com/iov-one/weave-market/x/nft"
	. "github.com/smartystreets/goconvey/convey"
)

const ticker = "MKT"

func mkt(amount uint64) coin.Coin {
	return coin.NewCoin(amount, ticker)
}

type fixture struct {
	db       weave.CacheableKVStore
	bank     *cash.Controller
	ledger   *Ledger
	registry *nft.Registry
	feeOwner weave.Address
}

func newFixture(t testing.TB, settlement string, guard cash.Guard) *fixture {
	t.Helper()
	db := store.MemStore()
	feeOwner := weavetest.NewCondition().Address()
	if err := gconf.Save(db, cash.ConfigPkg, &cash.Configuration{Ticker: ticker}); err != nil {
		t.Fatalf("cash configuration: %s", err)
	}
	conf := Configuration{
		Owner:         feeOwner,
		ListingFee:    mkt(DefaultListingFee),
		FeeSettlement: settlement,
	}
	if err := gconf.Save(db, ConfigPkg, &conf); err != nil {
		t.Fatalf("market configuration: %s", err)
	}
	bank := cash.NewController(guard)
	ledger := NewLedger(weavetest.TestChainID, bank)
	registry := nft.NewRegistry("test", ledger.Address())
	ledger.RegisterAssets(registry)
	return &fixture{
		db:       db,
		bank:     bank,
		ledger:   ledger,
		registry: registry,
		feeOwner: feeOwner,
	}
}

func (f *fixture) fund(t testing.TB, addr weave.Address, amount uint64) {
	t.Helper()
	if err := f.bank.Issue(f.db, addr, mkt(amount)); err != nil {
		t.Fatalf("issue: %s", err)
	}
}

func (f *fixture) balance(addr weave.Address) uint64 {
	c, err := f.bank.Balance(f.db, addr)
	So(err, ShouldBeNil)
	return c.Amount
}

func ids(items []*Item) []uint64 {
	res := make([]uint64, 0, len(items))
	for _, i := range items {
		res = append(res, i.ID)
	}
	return res
}

func TestMarketplace(t *testing.T) {
	const price = 1000000000
	fee := mkt(DefaultListingFee)

	Convey("Given two assets minted by a seller", t, func() {
		f := newFixture(t, "", nil)
		seller := weavetest.NewCondition().Address()
		buyer := weavetest.NewCondition().Address()
		f.fund(t, seller, 10*DefaultListingFee)
		f.fund(t, buyer, 5*price)

		a1, _, err := f.registry.Mint(f.db, "ipfs://u1", seller)
		So(err, ShouldBeNil)
		a2, _, err := f.registry.Mint(f.db, "ipfs://u2", seller)
		So(err, ShouldBeNil)
		So(a1, ShouldEqual, 1)
		So(a2, ShouldEqual, 2)

		got, err := f.ledger.ListingFee(f.db)
		So(err, ShouldBeNil)
		So(got, ShouldResemble, fee)

		Convey("Listing with a wrong fee fails and keeps the asset", func() {
			_, _, err := f.ledger.CreateMarketItem(f.db, f.registry.Address(), a1, mkt(price), seller, mkt(DefaultListingFee-1))
			So(ErrFeeMismatch.Is(err), ShouldBeTrue)

			asset, err := f.registry.Asset(f.db, a1)
			So(err, ShouldBeNil)
			So(asset.Owner, ShouldResemble, seller)

			items, err := f.ledger.FetchMarketItems(f.db)
			So(err, ShouldBeNil)
			So(items, ShouldBeEmpty)
			So(f.balance(seller), ShouldEqual, 10*DefaultListingFee)
		})

		Convey("Listing requires a positive price in the ledger currency", func() {
			_, _, err := f.ledger.CreateMarketItem(f.db, f.registry.Address(), a1, mkt(0), seller, fee)
			So(ErrInvalidPrice.Is(err), ShouldBeTrue)
			_, _, err = f.ledger.CreateMarketItem(f.db, f.registry.Address(), a1, coin.NewCoin(5, "ETH"), seller, fee)
			So(ErrInvalidPrice.Is(err), ShouldBeTrue)
		})

		Convey("Listing an asset of an unknown registry fails", func() {
			other := nft.RegistryCondition("other").Address()
			_, _, err := f.ledger.CreateMarketItem(f.db, other, a1, mkt(price), seller, fee)
			So(errors.ErrInput.Is(err), ShouldBeTrue)
		})

		Convey("Only the owner can list an asset", func() {
			_, _, err := f.ledger.CreateMarketItem(f.db, f.registry.Address(), a1, mkt(price), buyer, fee)
			So(nft.ErrNotOwner.Is(err), ShouldBeTrue)
			_, _, err = f.ledger.CreateMarketItem(f.db, f.registry.Address(), a1, mkt(price), nil, fee)
			So(errors.ErrUnauthorized.Is(err), ShouldBeTrue)
		})

		Convey("When both assets are listed", func() {
			i1, events, err := f.ledger.CreateMarketItem(f.db, f.registry.Address(), a1, mkt(price), seller, fee)
			So(err, ShouldBeNil)
			So(events, ShouldHaveLength, 2)
			So(events[0].Type, ShouldEqual, nft.EventTransferred)
			So(events[1].Type, ShouldEqual, EventItemCreated)

			i2, _, err := f.ledger.CreateMarketItem(f.db, f.registry.Address(), a2, mkt(price), seller, fee)
			So(err, ShouldBeNil)
			So(i1, ShouldEqual, 1)
			So(i2, ShouldEqual, 2)

			items, err := f.ledger.FetchMarketItems(f.db)
			So(err, ShouldBeNil)
			So(ids(items), ShouldResemble, []uint64{1, 2})
			for _, it := range items {
				So(it.Sold, ShouldBeFalse)
				So(it.Owner, ShouldResemble, f.ledger.Address())
				So(it.Seller, ShouldResemble, seller)
				So(it.Price, ShouldResemble, mkt(price))
			}

			asset, err := f.registry.Asset(f.db, a1)
			So(err, ShouldBeNil)
			So(asset.Owner, ShouldResemble, f.ledger.Address())

			So(f.balance(seller), ShouldEqual, 8*DefaultListingFee)
			So(f.balance(f.ledger.Address()), ShouldEqual, 2*DefaultListingFee)
			So(f.balance(f.feeOwner), ShouldEqual, 0)

			Convey("A buyer paying the price gets the asset", func() {
				events, err := f.ledger.CreateMarketSale(f.db, f.registry.Address(), i1, buyer, mkt(price))
				So(err, ShouldBeNil)
				So(events[len(events)-1].Type, ShouldEqual, EventItemSold)

				item, err := f.ledger.Item(f.db, i1)
				So(err, ShouldBeNil)
				So(item.Sold, ShouldBeTrue)
				So(item.Owner, ShouldResemble, buyer)
				So(item.FeeSettled, ShouldBeTrue)

				other, err := f.ledger.Item(f.db, i2)
				So(err, ShouldBeNil)
				So(other.Sold, ShouldBeFalse)
				So(other.Owner, ShouldResemble, f.ledger.Address())

				asset, err := f.registry.Asset(f.db, a1)
				So(err, ShouldBeNil)
				So(asset.Owner, ShouldResemble, buyer)

				So(f.balance(seller), ShouldEqual, 8*DefaultListingFee+price)
				So(f.balance(buyer), ShouldEqual, 4*price)
				So(f.balance(f.feeOwner), ShouldEqual, DefaultListingFee)
				So(f.balance(f.ledger.Address()), ShouldEqual, DefaultListingFee)

				market, err := f.ledger.FetchMarketItems(f.db)
				So(err, ShouldBeNil)
				So(ids(market), ShouldResemble, []uint64{2})

				mine, err := f.ledger.FetchMyNFTs(f.db, buyer)
				So(err, ShouldBeNil)
				So(ids(mine), ShouldResemble, []uint64{1})

				listed, err := f.ledger.FetchItemsListed(f.db, seller)
				So(err, ShouldBeNil)
				So(ids(listed), ShouldResemble, []uint64{1, 2})

				uri, err := f.registry.MetadataOf(f.db, a1)
				So(err, ShouldBeNil)
				So(uri, ShouldEqual, "ipfs://u1")

				Convey("The item cannot be sold twice", func() {
					_, err := f.ledger.CreateMarketSale(f.db, f.registry.Address(), i1, buyer, mkt(price))
					So(ErrAlreadySold.Is(err), ShouldBeTrue)
					So(f.balance(buyer), ShouldEqual, 4*price)
				})
			})

			Convey("A wrong payment is rejected", func() {
				_, err := f.ledger.CreateMarketSale(f.db, f.registry.Address(), i1, buyer, mkt(price-1))
				So(ErrWrongPayment.Is(err), ShouldBeTrue)
				_, err = f.ledger.CreateMarketSale(f.db, f.registry.Address(), i1, buyer, mkt(price+1))
				So(ErrWrongPayment.Is(err), ShouldBeTrue)

				item, err := f.ledger.Item(f.db, i1)
				So(err, ShouldBeNil)
				So(item.Sold, ShouldBeFalse)
				So(f.balance(buyer), ShouldEqual, 5*price)
			})

			Convey("Unknown items are not listed", func() {
				_, err := f.ledger.CreateMarketSale(f.db, f.registry.Address(), 99, buyer, mkt(price))
				So(ErrNotListed.Is(err), ShouldBeTrue)
			})

			Convey("The registry of the item must match", func() {
				other := nft.RegistryCondition("other").Address()
				_, err := f.ledger.CreateMarketSale(f.db, other, i1, buyer, mkt(price))
				So(errors.ErrInput.Is(err), ShouldBeTrue)
			})

			Convey("A buyer without funds cannot buy", func() {
				poor := weavetest.NewCondition().Address()
				_, err := f.ledger.CreateMarketSale(f.db, f.registry.Address(), i1, poor, mkt(price))
				So(errors.ErrAmount.Is(err), ShouldBeTrue)
			})

			Convey("The listed asset cannot be moved by the seller", func() {
				_, err := f.registry.Transfer(f.db, a1, seller, buyer, seller)
				So(nft.ErrNotOwner.Is(err), ShouldBeTrue)
			})

			Convey("Reads are idempotent", func() {
				first, err := f.ledger.FetchItemsListed(f.db, seller)
				So(err, ShouldBeNil)
				second, err := f.ledger.FetchItemsListed(f.db, seller)
				So(err, ShouldBeNil)
				So(second, ShouldResemble, first)

				q := f.ledger.MarketItems(f.db)
				a, err := q.All()
				So(err, ShouldBeNil)
				b, err := q.All()
				So(err, ShouldBeNil)
				So(b, ShouldResemble, a)
			})

			Convey("Every market item is in the listed items of its seller", func() {
				all, err := f.ledger.AllItems(f.db).All()
				So(err, ShouldBeNil)
				So(all, ShouldHaveLength, 2)
				err = f.ledger.MarketItems(f.db).Each(func(i *Item) error {
					listed, err := f.ledger.FetchItemsListed(f.db, i.Seller)
					So(err, ShouldBeNil)
					So(ids(listed), ShouldContain, i.ID)
					return nil
				})
				So(err, ShouldBeNil)
			})

			Convey("A relisted asset gets a new item id", func() {
				_, err := f.ledger.CreateMarketSale(f.db, f.registry.Address(), i1, buyer, mkt(price))
				So(err, ShouldBeNil)
				f.fund(t, buyer, DefaultListingFee)
				i3, _, err := f.ledger.CreateMarketItem(f.db, f.registry.Address(), a1, mkt(2*price), buyer, fee)
				So(err, ShouldBeNil)
				So(i3, ShouldEqual, 3)

				listed, err := f.ledger.FetchItemsListed(f.db, buyer)
				So(err, ShouldBeNil)
				So(ids(listed), ShouldResemble, []uint64{3})
			})
		})
	})

	Convey("Given fees settled on listing", t, func() {
		f := newFixture(t, SettleOnListing, nil)
		seller := weavetest.NewCondition().Address()
		buyer := weavetest.NewCondition().Address()
		f.fund(t, seller, DefaultListingFee)
		f.fund(t, buyer, price)

		a, _, err := f.registry.Mint(f.db, "ipfs://x", seller)
		So(err, ShouldBeNil)
		id, events, err := f.ledger.CreateMarketItem(f.db, f.registry.Address(), a, mkt(price), seller, fee)
		So(err, ShouldBeNil)
		So(events[1].Type, ShouldEqual, EventFeeSettled)

		So(f.balance(f.feeOwner), ShouldEqual, DefaultListingFee)
		So(f.balance(f.ledger.Address()), ShouldEqual, 0)

		item, err := f.ledger.Item(f.db, id)
		So(err, ShouldBeNil)
		So(item.FeeSettled, ShouldBeTrue)

		_, err = f.ledger.CreateMarketSale(f.db, f.registry.Address(), id, buyer, mkt(price))
		So(err, ShouldBeNil)
		So(f.balance(f.feeOwner), ShouldEqual, DefaultListingFee)
		So(f.balance(seller), ShouldEqual, price)
	})
}

func TestSamePayment(t *testing.T) {
	cases := map[string]struct {
		paid, want coin.Coin
		ok         bool
	}{
		"equal":               {paid: mkt(5), want: mkt(5), ok: true},
		"different":           {paid: mkt(4), want: mkt(5), ok: false},
		"zero without ticker": {paid: coin.Coin{}, want: mkt(0), ok: true},
		"foreign currency":    {paid: coin.NewCoin(5, "ETH"), want: mkt(5), ok: false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := samePayment(tc.paid, tc.want); got != tc.ok {
				t.Fatalf("want %v, got %v", tc.ok, got)
			}
		})
	}
}

/*
Package market implements the marketplace ledger.

A seller lists an asset of a registered asset registry by paying the listing
fee; the asset is moved into the custody of the ledger and a new item is
created. A buyer pays exactly the item price, the seller receives the
payment and the asset is moved to the buyer. An item is settled at most once
and there is no way to withdraw a listing.

The listing fee is always taken from the seller when the item is created.
Depending on the configured fee settlement it is forwarded to the fee owner
immediately ("listing") or when the item is sold ("sale").
*/
package market

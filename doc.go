/*
Package weave defines the interfaces shared by the marketplace packages:
storage, messages, transactions, handlers, events and addresses.

The asset registry lives in x/nft, the marketplace ledger in x/market and the
currency accounts in x/cash. Package app wires them into a single ordered,
durable Marketplace.
*/
package weave

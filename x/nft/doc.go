/*
Package nft implements the asset registry.

Every asset is identified by a sequential number starting at 1 and points to
an off-chain metadata URI that is set when the asset is minted and never
changes. The owner may approve a single operator that is allowed to move the
asset on the owner's behalf. All movement of an asset goes through Transfer.
*/
package nft

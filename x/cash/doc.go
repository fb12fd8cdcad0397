/*
Package cash holds the account balances and implements the payment
capability used by the marketplace.

Every account owns a single Wallet holding an amount of the currency
configured in genesis. Moving funds is always a debit followed by a credit
and fails as a whole; a Guard can reject incoming funds, which aborts the
operation that tried to pay.
*/
package cash

package service

import (
	"github.com/shopspring/decimal"
)

// BalanceLedger accumulates signed value contributions per wallet address.
// Decimal arithmetic keeps the running totals exact across many small
// amounts; accumulation order does not affect the final balance.
type BalanceLedger struct {
	balances map[string]decimal.Decimal
}

// NewBalanceLedger creates an empty ledger
func NewBalanceLedger() *BalanceLedger {
	return &BalanceLedger{balances: make(map[string]decimal.Decimal)}
}

// Credit adds value to a wallet's running total
func (l *BalanceLedger) Credit(wallet string, value decimal.Decimal) {
	l.balances[wallet] = l.balances[wallet].Add(value)
}

// Debit subtracts value from a wallet's running total
func (l *BalanceLedger) Debit(wallet string, value decimal.Decimal) {
	l.balances[wallet] = l.balances[wallet].Sub(value)
}

// NetBalance returns the accumulated balance for a wallet, zero if never seen
func (l *BalanceLedger) NetBalance(wallet string) decimal.Decimal {
	if b, ok := l.balances[wallet]; ok {
		return b
	}
	return decimal.Zero
}

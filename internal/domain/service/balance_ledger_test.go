package service

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBalanceLedger_CreditsAndDebits(t *testing.T) {
	ledger := NewBalanceLedger()

	ledger.Credit("A", decimal.RequireFromString("3.5"))
	ledger.Debit("A", decimal.RequireFromString("1.2"))
	ledger.Credit("B", decimal.RequireFromString("0.00000001"))

	assert.True(t, ledger.NetBalance("A").Equal(decimal.RequireFromString("2.3")))
	assert.True(t, ledger.NetBalance("B").Equal(decimal.RequireFromString("0.00000001")))
	assert.True(t, ledger.NetBalance("C").IsZero())
}

// Net balance equals credits minus debits regardless of accumulation order.
func TestBalanceLedger_OrderIndependence(t *testing.T) {
	type op struct {
		credit bool
		value  string
	}
	ops := []op{
		{true, "1.1"}, {false, "0.4"}, {true, "2.25"},
		{false, "3.0"}, {true, "0.05"}, {false, "0.00000003"},
	}

	apply := func(order []int) decimal.Decimal {
		ledger := NewBalanceLedger()
		for _, i := range order {
			if ops[i].credit {
				ledger.Credit("W", decimal.RequireFromString(ops[i].value))
			} else {
				ledger.Debit("W", decimal.RequireFromString(ops[i].value))
			}
		}
		return ledger.NetBalance("W")
	}

	base := apply([]int{0, 1, 2, 3, 4, 5})
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 10; trial++ {
		order := rng.Perm(len(ops))
		assert.True(t, base.Equal(apply(order)), "order %v changed the balance", order)
	}
}

// Many tiny amounts must accumulate without floating point drift.
func TestBalanceLedger_NoCumulativeRounding(t *testing.T) {
	ledger := NewBalanceLedger()
	small := decimal.RequireFromString("0.00000001")
	for i := 0; i < 100000; i++ {
		ledger.Credit("W", small)
	}
	assert.True(t, ledger.NetBalance("W").Equal(decimal.RequireFromString("0.001")))
}

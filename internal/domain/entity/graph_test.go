package entity

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestWallet_RoleTransitions(t *testing.T) {
	w := NewWallet("A")
	assert.Equal(t, RoleUnknown, w.Role)

	w.MarkSender()
	assert.Equal(t, RoleSender, w.Role)
	w.MarkSender()
	assert.Equal(t, RoleSender, w.Role)

	w.MarkReceiver()
	assert.Equal(t, RoleMixed, w.Role)
	w.MarkSender()
	assert.Equal(t, RoleMixed, w.Role)

	r := NewWallet("B")
	r.MarkReceiver()
	assert.Equal(t, RoleReceiver, r.Role)
}

func TestGraph_MergeEdgeIdempotent(t *testing.T) {
	g := NewGraph()
	hash := strings.Repeat("f", 64)
	value := decimal.RequireFromString("1.5")
	ts := time.Now()

	assert.True(t, g.MergeEdge("A", "B", value, hash, ts))
	assert.False(t, g.MergeEdge("A", "B", value, hash, ts))
	assert.Len(t, g.Edges, 1)

	// Distinct tx hash is a distinct edge.
	assert.True(t, g.MergeEdge("A", "B", value, strings.Repeat("e", 64), ts))
	assert.Len(t, g.Edges, 2)
}

func TestGraph_MarkTransactionSeen(t *testing.T) {
	g := NewGraph()
	assert.True(t, g.MarkTransactionSeen("h1"))
	assert.False(t, g.MarkTransactionSeen("h1"))
	assert.True(t, g.MarkTransactionSeen("h2"))
}

func TestGraph_UpsertWallet(t *testing.T) {
	g := NewGraph()
	w1 := g.UpsertWallet("A")
	w2 := g.UpsertWallet("A")
	assert.Same(t, w1, w2)
	assert.Len(t, g.Nodes, 1)
}

func TestGraph_SortedAccessors(t *testing.T) {
	g := NewGraph()
	g.UpsertWallet("C")
	g.UpsertWallet("A")
	g.UpsertWallet("B")

	wallets := g.Wallets()
	assert.Equal(t, "A", wallets[0].Address)
	assert.Equal(t, "B", wallets[1].Address)
	assert.Equal(t, "C", wallets[2].Address)
}

func TestClassifyEntity(t *testing.T) {
	hash := strings.Repeat("ab", 32)
	assert.Equal(t, EntityTxHash, ClassifyEntity(hash).Kind)
	assert.Equal(t, EntityAddress, ClassifyEntity("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa").Kind)
	// 64 chars but not hex stays an address.
	assert.Equal(t, EntityAddress, ClassifyEntity(strings.Repeat("z", 64)).Kind)
}

func TestWallet_ShortAddress(t *testing.T) {
	w := NewWallet("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa")
	assert.Equal(t, "1A1zP1...vfNa", w.ShortAddress())

	short := NewWallet("abcdef")
	assert.Equal(t, "abcdef", short.ShortAddress())
}

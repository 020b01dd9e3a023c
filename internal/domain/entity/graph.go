package entity

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// EdgeKey identifies a value flow uniquely within a run
type EdgeKey struct {
	From   string
	To     string
	TxHash string
}

// Edge represents a directed value flow between two wallets for one transaction
type Edge struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	Value     decimal.Decimal `json:"value"`
	TxHash    string          `json:"tx_hash"`
	Timestamp time.Time       `json:"timestamp"`
}

// Graph is the aggregate produced by one expansion run: wallet nodes connected
// by transaction-derived edges, plus bookkeeping the exporters surface.
type Graph struct {
	Nodes map[string]*Wallet
	Edges map[EdgeKey]*Edge

	// seenTxs guards balance accounting: a transaction's contributions are
	// applied exactly once no matter how many recursive paths reach it.
	seenTxs map[string]bool

	// Unresolved lists entities whose fetch failed with a source error.
	Unresolved []string

	// MalformedEntries counts input/output entries skipped across the run.
	MalformedEntries int
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		Nodes:   make(map[string]*Wallet),
		Edges:   make(map[EdgeKey]*Edge),
		seenTxs: make(map[string]bool),
	}
}

// UpsertWallet returns the wallet node for an address, creating it on first sight
func (g *Graph) UpsertWallet(address string) *Wallet {
	if w, ok := g.Nodes[address]; ok {
		return w
	}
	w := NewWallet(address)
	g.Nodes[address] = w
	return w
}

// MergeEdge adds an edge keyed by (from, to, tx hash). Re-adding the same
// triple is a no-op, which keeps the merge idempotent across recursive paths.
func (g *Graph) MergeEdge(from, to string, value decimal.Decimal, txHash string, ts time.Time) bool {
	key := EdgeKey{From: from, To: to, TxHash: txHash}
	if _, ok := g.Edges[key]; ok {
		return false
	}
	g.Edges[key] = &Edge{From: from, To: to, Value: value, TxHash: txHash, Timestamp: ts}
	return true
}

// MarkTransactionSeen records a transaction hash and reports whether it was new
func (g *Graph) MarkTransactionSeen(hash string) bool {
	if g.seenTxs[hash] {
		return false
	}
	g.seenTxs[hash] = true
	return true
}

// MarkUnresolved records an entity whose expansion failed
func (g *Graph) MarkUnresolved(entity string) {
	g.Unresolved = append(g.Unresolved, entity)
}

// Wallets returns the nodes sorted by address for deterministic export output
func (g *Graph) Wallets() []*Wallet {
	wallets := make([]*Wallet, 0, len(g.Nodes))
	for _, w := range g.Nodes {
		wallets = append(wallets, w)
	}
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].Address < wallets[j].Address })
	return wallets
}

// EdgeList returns the edges sorted by (from, to, tx hash) for deterministic output
func (g *Graph) EdgeList() []*Edge {
	edges := make([]*Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		if edges[i].To != edges[j].To {
			return edges[i].To < edges[j].To
		}
		return edges[i].TxHash < edges[j].TxHash
	})
	return edges
}

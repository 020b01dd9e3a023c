package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntityKind is the kind of identifier the expansion can operate on
type EntityKind string

const (
	EntityAddress EntityKind = "address"
	EntityTxHash  EntityKind = "txhash"
)

// EntityID identifies a wallet address or a transaction hash
type EntityID struct {
	Kind  EntityKind `json:"kind"`
	Value string     `json:"value"`
}

// ClassifyEntity decides whether a target string is a transaction hash or an
// address. Transaction hashes are fixed-length hex; anything else is an address.
func ClassifyEntity(value string) EntityID {
	if len(value) == 64 && isHex(value) {
		return EntityID{Kind: EntityTxHash, Value: value}
	}
	return EntityID{Kind: EntityAddress, Value: value}
}

func isHex(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// TransferEntry is one resolved input or output of a transaction
type TransferEntry struct {
	Address string          `json:"address"`
	Value   decimal.Decimal `json:"value"`
}

// Transaction represents a normalized transaction record from a source
type Transaction struct {
	Hash        string          `json:"hash"`
	Timestamp   time.Time       `json:"timestamp"`
	InputTotal  decimal.Decimal `json:"input_total"`
	OutputTotal decimal.Decimal `json:"output_total"`
	Inputs      []TransferEntry `json:"inputs"`
	Outputs     []TransferEntry `json:"outputs"`

	// Malformed counts input/output entries the source dropped during
	// normalization (missing recipient, unparsable value).
	Malformed int `json:"malformed,omitempty"`
}

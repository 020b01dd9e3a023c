package entity

import (
	"github.com/shopspring/decimal"
)

// WalletRole classifies which sides of observed transactions a wallet appears on
type WalletRole string

const (
	RoleUnknown  WalletRole = "unknown"
	RoleSender   WalletRole = "sender"
	RoleReceiver WalletRole = "receiver"
	RoleMixed    WalletRole = "mixed"
)

// Wallet represents an address node in the derived transaction graph
type Wallet struct {
	Address    string          `json:"address"`
	Role       WalletRole      `json:"role"`
	NetBalance decimal.Decimal `json:"net_balance"`
}

// NewWallet creates a wallet with no observed role yet
func NewWallet(address string) *Wallet {
	return &Wallet{
		Address:    address,
		Role:       RoleUnknown,
		NetBalance: decimal.Zero,
	}
}

// MarkSender records that the wallet appeared on the input side of a transaction
func (w *Wallet) MarkSender() {
	switch w.Role {
	case RoleUnknown:
		w.Role = RoleSender
	case RoleReceiver:
		w.Role = RoleMixed
	}
}

// MarkReceiver records that the wallet appeared on the output side of a transaction
func (w *Wallet) MarkReceiver() {
	switch w.Role {
	case RoleUnknown:
		w.Role = RoleReceiver
	case RoleSender:
		w.Role = RoleMixed
	}
}

// ShortAddress returns the abbreviated display form used by the exporters
func (w *Wallet) ShortAddress() string {
	if len(w.Address) <= 10 {
		return w.Address
	}
	return w.Address[:6] + "..." + w.Address[len(w.Address)-4:]
}

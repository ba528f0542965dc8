// Package wallet is the boundary to whatever holds the user's keys. The TUI
// only sees the Wallet interface and the Session built on top of it.
package wallet

import (
	"context"
	"errors"

	"github.com/ekene/oryo/internal/tip"
)

var (
	// ErrNoWallet means no wallet backend is available to connect to.
	ErrNoWallet = errors.New("no wallet found: configure wallet.backend or install a key")
	// ErrNoAccounts means the wallet is present but exposes no accounts.
	ErrNoAccounts = errors.New("wallet has no accounts")
	// ErrNotConnected is returned by session operations that need an account.
	ErrNotConnected = errors.New("wallet not connected")
	// ErrUnknownAccount is returned for an address the wallet does not hold.
	ErrUnknownAccount = errors.New("account not found in wallet")
)

// Account is one address exposed by the wallet.
type Account struct {
	Address string
	Name    string
}

// Wallet lists accounts, reports balances and sends tips.
type Wallet interface {
	Accounts(ctx context.Context) ([]Account, error)
	Balances(ctx context.Context, address string) ([]tip.Asset, error)
	SendTip(ctx context.Context, from string, req tip.Request) (tip.Receipt, error)
}

// ShortAddress abbreviates an address for display.
func ShortAddress(a string) string {
	if len(a) <= 12 {
		return a
	}
	return a[:6] + "…" + a[len(a)-4:]
}

package wallet

import (
	"context"
	"fmt"
	"sync"

	"github.com/ekene/oryo/internal/database/repository"
)

// SessionStore persists the connected account between runs.
type SessionStore interface {
	Get(ctx context.Context) (*repository.Session, error)
	Set(ctx context.Context, s repository.Session) error
	Clear(ctx context.Context) error
}

// Session is the application's wallet state: which wallet is configured and
// which account, if any, is connected.
type Session struct {
	wallet Wallet
	store  SessionStore

	mu      sync.RWMutex
	account *Account
}

// NewSession accepts a nil wallet; Connect then reports ErrNoWallet.
func NewSession(w Wallet, store SessionStore) *Session {
	return &Session{wallet: w, store: store}
}

// Wallet returns the configured wallet, or nil.
func (s *Session) Wallet() Wallet { return s.wallet }

// Account returns the connected account.
func (s *Session) Account() (Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.account == nil {
		return Account{}, false
	}
	return *s.account, true
}

// Restore reconnects the account saved by a previous run if the wallet still
// offers it. A stale saved account is cleared.
func (s *Session) Restore(ctx context.Context) (bool, error) {
	if s.wallet == nil || s.store == nil {
		return false, nil
	}
	saved, err := s.store.Get(ctx)
	if err != nil || saved == nil {
		return false, err
	}
	accounts, err := s.wallet.Accounts(ctx)
	if err != nil {
		return false, err
	}
	for _, a := range accounts {
		if a.Address == saved.Address {
			s.set(a)
			return true, nil
		}
	}
	return false, s.store.Clear(ctx)
}

// Connect selects the wallet's first account and persists it.
func (s *Session) Connect(ctx context.Context) (Account, error) {
	if s.wallet == nil {
		return Account{}, ErrNoWallet
	}
	accounts, err := s.wallet.Accounts(ctx)
	if err != nil {
		return Account{}, fmt.Errorf("list accounts: %w", err)
	}
	if len(accounts) == 0 {
		return Account{}, ErrNoAccounts
	}
	return accounts[0], s.persist(ctx, accounts[0])
}

// Use switches to another account held by the wallet.
func (s *Session) Use(ctx context.Context, address string) (Account, error) {
	if s.wallet == nil {
		return Account{}, ErrNoWallet
	}
	accounts, err := s.wallet.Accounts(ctx)
	if err != nil {
		return Account{}, fmt.Errorf("list accounts: %w", err)
	}
	for _, a := range accounts {
		if a.Address == address {
			return a, s.persist(ctx, a)
		}
	}
	return Account{}, fmt.Errorf("%w: %s", ErrUnknownAccount, address)
}

// Disconnect forgets the account in memory and on disk.
func (s *Session) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	s.account = nil
	s.mu.Unlock()
	if s.store == nil {
		return nil
	}
	return s.store.Clear(ctx)
}

func (s *Session) persist(ctx context.Context, a Account) error {
	if s.store != nil {
		if err := s.store.Set(ctx, repository.Session{Address: a.Address, Name: a.Name}); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	}
	s.set(a)
	return nil
}

func (s *Session) set(a Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := a
	s.account = &acct
}

package wallet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ekene/oryo/internal/database/repository"
)

type memStore struct {
	s *repository.Session
}

func (m *memStore) Get(context.Context) (*repository.Session, error) { return m.s, nil }

func (m *memStore) Set(_ context.Context, s repository.Session) error {
	m.s = &s
	return nil
}

func (m *memStore) Clear(context.Context) error {
	m.s = nil
	return nil
}

func TestSessionConnectUseDisconnect(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	s := NewSession(NewDevWallet(DevOptions{}), store)

	_, ok := s.Account()
	require.False(t, ok)

	a, err := s.Connect(ctx)
	require.NoError(t, err)
	require.Equal(t, "Main", a.Name)
	require.Equal(t, a.Address, store.s.Address)

	second := DefaultDevAccounts()[1].Address
	b, err := s.Use(ctx, second)
	require.NoError(t, err)
	require.Equal(t, "Savings", b.Name)
	cur, ok := s.Account()
	require.True(t, ok)
	require.Equal(t, second, cur.Address)

	_, err = s.Use(ctx, "missing")
	require.ErrorIs(t, err, ErrUnknownAccount)

	require.NoError(t, s.Disconnect(ctx))
	_, ok = s.Account()
	require.False(t, ok)
	require.Nil(t, store.s)
}

func TestSessionRestore(t *testing.T) {
	ctx := context.Background()
	addr := DefaultDevAccounts()[1].Address
	store := &memStore{s: &repository.Session{Address: addr, Name: "Savings"}}
	s := NewSession(NewDevWallet(DevOptions{}), store)
	ok, err := s.Restore(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	cur, _ := s.Account()
	require.Equal(t, addr, cur.Address)

	stale := &memStore{s: &repository.Session{Address: "gone"}}
	s = NewSession(NewDevWallet(DevOptions{}), stale)
	ok, err = s.Restore(ctx)
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, stale.s)
}

func TestSessionWithoutWallet(t *testing.T) {
	s := NewSession(nil, nil)
	_, err := s.Connect(context.Background())
	require.ErrorIs(t, err, ErrNoWallet)
	ok, err := s.Restore(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}

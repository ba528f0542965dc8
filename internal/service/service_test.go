package service

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ekene/oryo/internal/database"
	"github.com/ekene/oryo/internal/database/repository"
	"github.com/ekene/oryo/internal/identity"
	"github.com/ekene/oryo/internal/tip"
	"github.com/ekene/oryo/internal/wallet"
)

func seededDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Open(ctx, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.RunMigrations(dbPath))
	require.NoError(t, database.SeedDefaults(ctx, db, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))
	return db
}

type stubWallet struct {
	receipt tip.Receipt
	err     error
	got     []tip.Request
}

func (s *stubWallet) Accounts(context.Context) ([]wallet.Account, error) {
	return []wallet.Account{{Address: "me"}}, nil
}

func (s *stubWallet) Balances(context.Context, string) ([]tip.Asset, error) { return nil, nil }

func (s *stubWallet) SendTip(_ context.Context, _ string, req tip.Request) (tip.Receipt, error) {
	s.got = append(s.got, req)
	return s.receipt, s.err
}

func adewaleRequest(t *testing.T, db *sql.DB) tip.Request {
	t.Helper()
	id := database.CreatorID("@adewale")
	c, err := repository.NewCreatorRepo(db).Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, c)
	return tip.Request{
		To: c.Address, RecipientID: id, RecipientName: c.Name,
		Asset: "DOT", Decimals: 10, Amount: "5", RawAmount: "50000000000", Message: "🔥 great set",
	}
}

func TestTipServiceRecordsSuccess(t *testing.T) {
	db := seededDB(t)
	ctx := context.Background()
	w := &stubWallet{receipt: tip.Receipt{Status: tip.StatusConfirmed, TxHash: "0xabc"}}
	creators := repository.NewCreatorRepo(db)
	svc := &TipService{Wallet: w, Tips: repository.NewTipRepo(db), Creators: creators}

	req := adewaleRequest(t, db)
	before, err := creators.Get(ctx, req.RecipientID)
	require.NoError(t, err)

	rec, err := svc.Send(ctx, "me", req)
	require.NoError(t, err)
	require.Equal(t, "0xabc", rec.TxHash)
	require.Len(t, w.got, 1)
	require.Equal(t, "50000000000", w.got[0].RawAmount)

	after, err := creators.Get(ctx, req.RecipientID)
	require.NoError(t, err)
	require.Equal(t, before.TipsCount+1, after.TipsCount)

	hist, err := svc.History(ctx, "me", 10)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	require.Equal(t, tip.StatusConfirmed, hist[0].Status)
	require.Equal(t, "Adewale", hist[0].RecipientName)
	require.Equal(t, "🔥 great set", hist[0].Message)
	require.Empty(t, hist[0].Error)
}

func TestTipServiceRecordsFailure(t *testing.T) {
	db := seededDB(t)
	ctx := context.Background()
	w := &stubWallet{err: errors.Join(tip.ErrConnectivity, errors.New("rpc down"))}
	creators := repository.NewCreatorRepo(db)
	svc := &TipService{Wallet: w, Tips: repository.NewTipRepo(db), Creators: creators}
	req := adewaleRequest(t, db)

	_, err := svc.Send(ctx, "me", req)
	require.ErrorIs(t, err, tip.ErrConnectivity)

	c, err := creators.Get(ctx, req.RecipientID)
	require.NoError(t, err)
	require.Zero(t, c.TipsCount)

	hist, err := svc.History(ctx, "me", 10)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	require.Equal(t, tip.StatusFailed, hist[0].Status)
	require.Contains(t, hist[0].Error, "rpc down")
}

func TestTipServiceRecordsCancelled(t *testing.T) {
	db := seededDB(t)
	w := &stubWallet{err: context.Canceled}
	svc := &TipService{Wallet: w, Tips: repository.NewTipRepo(db)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Send(ctx, "me", adewaleRequest(t, db))
	require.Equal(t, tip.KindCancelled, tip.Classify(err))

	hist, err := svc.History(context.Background(), "me", 10)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	require.Equal(t, tip.StatusFailed, hist[0].Status)
}

func TestTipServiceNeedsWalletAndSender(t *testing.T) {
	svc := &TipService{}
	_, err := svc.Send(context.Background(), "me", tip.Request{})
	require.ErrorIs(t, err, wallet.ErrNoWallet)

	svc.Wallet = &stubWallet{}
	_, err = svc.Send(context.Background(), "", tip.Request{})
	require.ErrorIs(t, err, wallet.ErrNotConnected)
}

func TestSearch(t *testing.T) {
	db := seededDB(t)
	ctx := context.Background()
	svc := &SearchService{
		Creators:    repository.NewCreatorRepo(db),
		Communities: repository.NewCommunityRepo(db),
		Posts:       repository.NewPostRepo(db),
	}

	res, err := svc.Search(ctx, "  ")
	require.NoError(t, err)
	require.True(t, res.Empty())
	require.Empty(t, res.Suggestion)

	res, err = svc.Search(ctx, "TUNDE")
	require.NoError(t, err)
	require.Len(t, res.Creators, 1)
	require.Equal(t, "Tunde", res.Creators[0].Name)
	require.Len(t, res.Posts, 2)

	res, err = svc.Search(ctx, "lagos")
	require.NoError(t, err)
	require.NotEmpty(t, res.Communities)

	res, err = svc.Search(ctx, "adewal3")
	require.NoError(t, err)
	require.True(t, res.Empty())
	require.Equal(t, "Adewale", res.Suggestion)

	res, err = svc.Search(ctx, "zzzzzzzzzz")
	require.NoError(t, err)
	require.True(t, res.Empty())
	require.Empty(t, res.Suggestion)
}

func TestProfileService(t *testing.T) {
	db := seededDB(t)
	ctx := context.Background()
	svc := &ProfileService{Profiles: repository.NewProfileRepo(db)}

	_, err := svc.Load(ctx, "")
	require.ErrorIs(t, err, ErrNoAddress)

	p, err := svc.Load(ctx, "addr-1")
	require.NoError(t, err)
	require.Equal(t, "addr-1", p.Address)
	require.Empty(t, p.Name)

	p.Name = "  Ngozi "
	p.Website = "ngozi.art"
	p.Handle = "Ngozi"
	saved, err := svc.Save(ctx, p)
	require.NoError(t, err)
	require.Equal(t, "Ngozi", saved.Name)
	require.Equal(t, "https://ngozi.art", saved.Website)
	require.Equal(t, "@ngozi", saved.Handle)

	p.Email = "not-an-email"
	_, err = svc.Save(ctx, p)
	require.Equal(t, tip.KindValidation, tip.Classify(err))

	got, err := svc.ApplyIdentity(ctx, "addr-1", identity.Profile{
		Name: "Other Name", Email: "ngozi@example.com", Avatar: "https://example.com/a.png", Handle: "@other",
	})
	require.NoError(t, err)
	require.Equal(t, "Ngozi", got.Name, "user-set name wins")
	require.Equal(t, "@ngozi", got.Handle)
	require.Equal(t, "ngozi@example.com", got.Email)
	require.Equal(t, "https://example.com/a.png", got.Avatar)

	again, err := svc.Load(ctx, "addr-1")
	require.NoError(t, err)
	require.Equal(t, got.Email, again.Email)
}

func TestNavigator(t *testing.T) {
	var n Navigator
	require.Equal(t, "Feed", n.Label("/feed"))
	require.Equal(t, "Creators", n.Label("/creators/abc"))
	require.Equal(t, "Wallet", n.Label("wallet/"))
	require.Empty(t, n.Label("/nope"))
	require.Equal(t, 0, n.Index("/feed"))
	require.Equal(t, 7, n.Index("/tips"))
	require.Equal(t, -1, n.Index("/feedback"))
	require.Len(t, n.Routes(), 8)
}

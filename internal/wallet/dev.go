package wallet

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"

	"github.com/ekene/oryo/internal/tip"
)

// DevOptions configures the development wallet.
type DevOptions struct {
	Accounts []Account
	Assets   []tip.Asset
	Latency  time.Duration
	FailRate float64
	Rand     func() float64
}

// DevWallet is an in-memory wallet that behaves like a slow remote one:
// every call waits Latency (or until ctx is done) and sends can fail at
// FailRate with a connectivity error.
type DevWallet struct {
	mu       sync.Mutex
	accounts []Account
	order    []string
	balances map[string]map[string]tip.Asset
	latency  time.Duration
	failRate float64
	rand     func() float64
	nonce    uint64
}

// DefaultDevAssets is the balance snapshot every dev account starts with.
func DefaultDevAssets() []tip.Asset {
	return []tip.Asset{
		{Symbol: "DOT", Name: "Polkadot", Decimals: 10, Balance: decimal.NewFromInt(250), USDPrice: decimal.RequireFromString("6.40")},
		{Symbol: "KSM", Name: "Kusama", Decimals: 12, Balance: decimal.RequireFromString("4.2"), USDPrice: decimal.RequireFromString("28.10")},
		{Symbol: "USDT", Name: "Tether USD", Decimals: 6, Balance: decimal.NewFromInt(100), USDPrice: decimal.NewFromInt(1)},
		{Symbol: "USDC", Name: "USD Coin", Decimals: 6, Balance: decimal.Zero, USDPrice: decimal.NewFromInt(1)},
	}
}

// DefaultDevAccounts are the accounts a fresh dev wallet exposes.
func DefaultDevAccounts() []Account {
	return []Account{
		{Address: "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY", Name: "Main"},
		{Address: "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty", Name: "Savings"},
	}
}

func NewDevWallet(opts DevOptions) *DevWallet {
	if len(opts.Accounts) == 0 {
		opts.Accounts = DefaultDevAccounts()
	}
	if len(opts.Assets) == 0 {
		opts.Assets = DefaultDevAssets()
	}
	if opts.Rand == nil {
		opts.Rand = rand.Float64
	}
	w := &DevWallet{
		accounts: append([]Account(nil), opts.Accounts...),
		balances: make(map[string]map[string]tip.Asset, len(opts.Accounts)),
		latency:  opts.Latency,
		failRate: opts.FailRate,
		rand:     opts.Rand,
	}
	for _, a := range opts.Assets {
		w.order = append(w.order, a.Symbol)
	}
	for _, acct := range opts.Accounts {
		held := make(map[string]tip.Asset, len(opts.Assets))
		for _, a := range opts.Assets {
			held[a.Symbol] = a
		}
		w.balances[acct.Address] = held
	}
	return w
}

func (w *DevWallet) wait(ctx context.Context) error {
	if w.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(w.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (w *DevWallet) Accounts(ctx context.Context) ([]Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Account(nil), w.accounts...), nil
}

func (w *DevWallet) Balances(ctx context.Context, address string) ([]tip.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	held, ok := w.balances[address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAccount, address)
	}
	out := make([]tip.Asset, 0, len(held))
	for _, sym := range w.order {
		out = append(out, held[sym])
	}
	return out, nil
}

func (w *DevWallet) SendTip(ctx context.Context, from string, req tip.Request) (tip.Receipt, error) {
	if err := w.wait(ctx); err != nil {
		return tip.Receipt{}, err
	}
	if w.failRate > 0 && w.rand() < w.failRate {
		return tip.Receipt{}, fmt.Errorf("dev wallet: simulated network drop: %w", tip.ErrConnectivity)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	held, ok := w.balances[from]
	if !ok {
		return tip.Receipt{}, fmt.Errorf("%w: %s", ErrUnknownAccount, from)
	}
	asset, ok := held[req.Asset]
	if !ok {
		return tip.Receipt{}, &tip.ValidationError{Field: "asset", Reason: "wallet does not hold " + req.Asset}
	}
	amount, err := tip.FromRaw(req.RawAmount, asset.Decimals)
	if err != nil {
		return tip.Receipt{}, err
	}
	if !amount.IsPositive() {
		return tip.Receipt{}, &tip.ValidationError{Field: "amount", Reason: "amount must be greater than zero"}
	}
	if amount.GreaterThan(asset.Balance) {
		return tip.Receipt{}, &tip.ValidationError{Field: "amount", Reason: "insufficient " + asset.Symbol + " balance"}
	}
	if strings.TrimSpace(req.To) == "" {
		return tip.Receipt{}, &tip.ValidationError{Field: "recipient", Reason: "recipient address required"}
	}
	asset.Balance = asset.Balance.Sub(amount)
	held[req.Asset] = asset
	if dest, ok := w.balances[req.To]; ok {
		in := dest[req.Asset]
		in.Balance = in.Balance.Add(amount)
		dest[req.Asset] = in
	}
	w.nonce++
	hash := crypto.Keccak256Hash([]byte(fmt.Sprintf("%s|%s|%s|%s|%s|%d", from, req.To, req.Asset, req.RawAmount, req.Message, w.nonce)))
	return tip.Receipt{Status: tip.StatusConfirmed, TxHash: hash.Hex()}, nil
}

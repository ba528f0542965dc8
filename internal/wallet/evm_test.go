package wallet

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ekene/oryo/internal/tip"
)

type fakeBackend struct {
	balance *big.Int
	sent    []*types.Transaction
	sendErr error
}

func (f *fakeBackend) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	return f.balance, nil
}

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return uint64(len(f.sent)), nil
}

func (f *fakeBackend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(2_000_000_000), nil
}

func (f *fakeBackend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{BaseFee: big.NewInt(10_000_000_000)}, nil
}

func (f *fakeBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 21_000 + 16*64, nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	return nil
}

func TestEVMWalletSendsSignedTransfer(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	backend := &fakeBackend{balance: new(big.Int).Mul(big.NewInt(3), big.NewInt(1e18))}
	w, err := NewEVMWallet(backend, key, EVMOptions{Symbol: "ETH", ChainID: 31337, USDPrice: decimal.NewFromInt(3000)})
	require.NoError(t, err)

	ctx := context.Background()
	accts, err := w.Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, accts, 1)
	from := accts[0].Address

	bal, err := w.Balances(ctx, from)
	require.NoError(t, err)
	require.Equal(t, "3", bal[0].Balance.String())
	require.Equal(t, int32(18), bal[0].Decimals)

	to := "0x1111111111111111111111111111111111111111"
	raw, err := tip.RawAmount("0.25", 18)
	require.NoError(t, err)
	rec, err := w.SendTip(ctx, from, tip.Request{To: to, Asset: "ETH", RawAmount: raw, Message: "gm"})
	require.NoError(t, err)
	require.Equal(t, tip.StatusSubmitted, rec.Status)
	require.Len(t, backend.sent, 1)

	tx := backend.sent[0]
	require.Equal(t, rec.TxHash, tx.Hash().Hex())
	require.Equal(t, "250000000000000000", tx.Value().String())
	require.Equal(t, []byte("gm"), tx.Data())
	require.Equal(t, common.HexToAddress(to), *tx.To())
	require.Equal(t, big.NewInt(22_000_000_000), tx.GasFeeCap())

	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(31337)), tx)
	require.NoError(t, err)
	require.Equal(t, from, sender.Hex())
}

func TestEVMWalletValidationAndConnectivity(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	backend := &fakeBackend{balance: big.NewInt(0), sendErr: errors.New("connection refused")}
	w, err := NewEVMWallet(backend, key, EVMOptions{ChainID: 1})
	require.NoError(t, err)
	from := crypto.PubkeyToAddress(key.PublicKey).Hex()
	ctx := context.Background()

	_, err = w.SendTip(ctx, from, tip.Request{To: "15oF4uVJwmo4", Asset: "ETH", RawAmount: "1"})
	require.Equal(t, tip.KindValidation, tip.Classify(err))

	_, err = w.SendTip(ctx, from, tip.Request{To: "0x1111111111111111111111111111111111111111", Asset: "DOT", RawAmount: "1"})
	require.Equal(t, tip.KindValidation, tip.Classify(err))

	_, err = w.SendTip(ctx, from, tip.Request{To: "0x1111111111111111111111111111111111111111", Asset: "ETH", RawAmount: "1"})
	require.ErrorIs(t, err, tip.ErrConnectivity)

	_, err = w.SendTip(ctx, "0x2222222222222222222222222222222222222222", tip.Request{})
	require.ErrorIs(t, err, ErrUnknownAccount)

	_, err = NewEVMWallet(backend, nil, EVMOptions{})
	require.ErrorIs(t, err, ErrNoWallet)
}

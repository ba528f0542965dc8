package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"

	"github.com/ekene/oryo/internal/tip"
)

const evmDecimals = 18

// Backend is the subset of ethclient.Client the EVM wallet needs.
type Backend interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// EVMOptions configures an EVMWallet.
type EVMOptions struct {
	Name     string
	Symbol   string
	USDPrice decimal.Decimal
	ChainID  int64
}

// EVMWallet sends native-asset tips over JSON-RPC, signing locally with a
// single key. The tip message travels in the transaction data field.
type EVMWallet struct {
	backend Backend
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int
	opts    EVMOptions
}

// NewEVMWallet wraps an existing backend.
func NewEVMWallet(backend Backend, key *ecdsa.PrivateKey, opts EVMOptions) (*EVMWallet, error) {
	if key == nil {
		return nil, ErrNoWallet
	}
	if opts.Symbol == "" {
		opts.Symbol = "ETH"
	}
	if opts.Name == "" {
		opts.Name = "EVM"
	}
	return &EVMWallet{
		backend: backend,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		chainID: big.NewInt(opts.ChainID),
		opts:    opts,
	}, nil
}

// DialEVM connects to rpcURL and signs with the hex-encoded private key.
// The returned close func releases the RPC client.
func DialEVM(ctx context.Context, rpcURL, keyHex string, opts EVMOptions) (*EVMWallet, func(), error) {
	raw := strings.TrimSpace(keyHex)
	if raw == "" || strings.TrimSpace(rpcURL) == "" {
		return nil, nil, ErrNoWallet
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(raw, "0x"))
	if err != nil {
		return nil, nil, fmt.Errorf("parse wallet key: %w", err)
	}
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w: %w", rpcURL, tip.ErrConnectivity, err)
	}
	if opts.ChainID == 0 {
		id, err := client.ChainID(ctx)
		if err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("chain id: %w: %w", tip.ErrConnectivity, err)
		}
		opts.ChainID = id.Int64()
	}
	w, err := NewEVMWallet(client, key, opts)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return w, client.Close, nil
}

func (w *EVMWallet) Accounts(ctx context.Context) ([]Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []Account{{Address: w.from.Hex(), Name: w.opts.Name}}, nil
}

func (w *EVMWallet) Balances(ctx context.Context, address string) ([]tip.Asset, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAccount, address)
	}
	wei, err := w.backend.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, fmt.Errorf("balance: %w: %w", tip.ErrConnectivity, err)
	}
	return []tip.Asset{{
		Symbol:   w.opts.Symbol,
		Name:     w.opts.Name,
		Decimals: evmDecimals,
		Balance:  decimal.NewFromBigInt(wei, -evmDecimals),
		USDPrice: w.opts.USDPrice,
	}}, nil
}

func (w *EVMWallet) SendTip(ctx context.Context, from string, req tip.Request) (tip.Receipt, error) {
	if !strings.EqualFold(from, w.from.Hex()) {
		return tip.Receipt{}, fmt.Errorf("%w: %s", ErrUnknownAccount, from)
	}
	if req.Asset != w.opts.Symbol {
		return tip.Receipt{}, &tip.ValidationError{Field: "asset", Reason: "only " + w.opts.Symbol + " can be sent from this wallet"}
	}
	if !common.IsHexAddress(req.To) {
		return tip.Receipt{}, &tip.ValidationError{Field: "recipient", Reason: "recipient is not an EVM address"}
	}
	value, ok := new(big.Int).SetString(req.RawAmount, 10)
	if !ok || value.Sign() <= 0 {
		return tip.Receipt{}, &tip.ValidationError{Field: "amount", Reason: "invalid raw amount " + req.RawAmount}
	}
	to := common.HexToAddress(req.To)
	data := []byte(req.Message)

	nonce, err := w.backend.PendingNonceAt(ctx, w.from)
	if err != nil {
		return tip.Receipt{}, fmt.Errorf("nonce: %w: %w", tip.ErrConnectivity, err)
	}
	tipCap, err := w.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return tip.Receipt{}, fmt.Errorf("gas tip: %w: %w", tip.ErrConnectivity, err)
	}
	head, err := w.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return tip.Receipt{}, fmt.Errorf("head: %w: %w", tip.ErrConnectivity, err)
	}
	baseFee := head.BaseFee
	if baseFee == nil {
		baseFee = big.NewInt(0)
	}
	feeCap := new(big.Int).Add(new(big.Int).Mul(baseFee, big.NewInt(2)), tipCap)
	gas, err := w.backend.EstimateGas(ctx, ethereum.CallMsg{From: w.from, To: &to, Value: value, Data: data})
	if err != nil {
		return tip.Receipt{}, fmt.Errorf("estimate gas: %w", err)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   w.chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(w.chainID), w.key)
	if err != nil {
		return tip.Receipt{}, fmt.Errorf("sign: %w", err)
	}
	if err := w.backend.SendTransaction(ctx, signed); err != nil {
		return tip.Receipt{}, fmt.Errorf("send: %w: %w", tip.ErrConnectivity, err)
	}
	return tip.Receipt{Status: tip.StatusSubmitted, TxHash: signed.Hash().Hex()}, nil
}

// Package keyed implements a wallet backed by a local private key and one
// RPC endpoint per chain. It behaves like a browser wallet: it has a single
// active chain, and switching to a chain with no endpoint is refused with the
// EIP-1193 "unrecognized chain" code.
package keyed

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/pendergraft/mintfactory/internal/chains/evm"
	"github.com/pendergraft/mintfactory/internal/wallet"
)

// ErrInvalidKey is returned by ParseKey.
var ErrInvalidKey = errors.New("invalid private key")

// Backend is the chain access a keyed wallet needs. *ethclient.Client and
// the simulated backend's client satisfy it.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
}

// Dialer opens a backend for an RPC endpoint.
type Dialer func(ctx context.Context, url string) (Backend, error)

func dialEthclient(ctx context.Context, url string) (Backend, error) {
	c, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Option configures a Wallet.
type Option func(*Wallet)

// WithBackend registers an already connected backend for chainID.
func WithBackend(chainID int64, b Backend) Option {
	return func(w *Wallet) {
		w.backends[chainID] = b
	}
}

// WithEndpoints registers RPC endpoints, dialed on first use.
func WithEndpoints(endpoints map[int64]string) Option {
	return func(w *Wallet) {
		for id, url := range endpoints {
			w.endpoints[id] = url
		}
	}
}

// WithDialer replaces the ethclient dialer.
func WithDialer(d Dialer) Option {
	return func(w *Wallet) {
		w.dial = d
	}
}

// WithActiveChain sets the chain the wallet starts on.
func WithActiveChain(chainID int64) Option {
	return func(w *Wallet) {
		w.active = chainID
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Wallet) {
		w.logger = l
	}
}

// Wallet is a wallet.Provider signing with a local key.
type Wallet struct {
	key  *ecdsa.PrivateKey
	addr common.Address
	dial Dialer

	logger *slog.Logger

	mu        sync.Mutex
	active    int64
	backends  map[int64]Backend
	endpoints map[int64]string
}

// New creates a wallet for key.
func New(key *ecdsa.PrivateKey, opts ...Option) *Wallet {
	w := &Wallet{
		key:       key,
		addr:      crypto.PubkeyToAddress(key.PublicKey),
		dial:      dialEthclient,
		logger:    slog.Default(),
		backends:  make(map[int64]Backend),
		endpoints: make(map[int64]string),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ParseKey decodes a hex private key, with or without 0x.
func ParseKey(hexKey string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return key, nil
}

func (w *Wallet) Account(ctx context.Context) (common.Address, error) {
	return w.addr, nil
}

// ActiveChain returns the active chain, or 0 if none was selected yet.
func (w *Wallet) ActiveChain(ctx context.Context) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active, nil
}

// SwitchChain makes chainID active. The endpoint must report the same chain
// id it is configured for.
func (w *Wallet) SwitchChain(ctx context.Context, chainID int64) error {
	b, err := w.backend(ctx, chainID)
	if err != nil {
		return err
	}

	remote, err := b.ChainID(ctx)
	if err != nil {
		return &wallet.ProviderError{Code: wallet.CodeChainDisconnected, Message: fmt.Sprintf("reading chain id: %v", err)}
	}
	if remote.Int64() != chainID {
		return &wallet.ProviderError{
			Code:    wallet.CodeChainDisconnected,
			Message: fmt.Sprintf("endpoint for chain %d reports chain %d", chainID, remote.Int64()),
		}
	}

	w.mu.Lock()
	w.active = chainID
	w.mu.Unlock()

	w.logger.Debug("switched chain", "chain_id", chainID, "address", w.addr.Hex())
	return nil
}

// Signer returns a signer bound to the active chain.
func (w *Wallet) Signer(ctx context.Context) (wallet.Signer, error) {
	w.mu.Lock()
	active := w.active
	w.mu.Unlock()

	if active == 0 {
		return nil, &wallet.ProviderError{Code: wallet.CodeChainDisconnected, Message: "no active chain"}
	}
	b, err := w.backend(ctx, active)
	if err != nil {
		return nil, err
	}
	return &signer{key: w.key, addr: w.addr, backend: b, sent: make(map[common.Hash]*types.Transaction)}, nil
}

func (w *Wallet) backend(ctx context.Context, chainID int64) (Backend, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if b, ok := w.backends[chainID]; ok {
		return b, nil
	}
	url, ok := w.endpoints[chainID]
	if !ok {
		return nil, &wallet.ProviderError{
			Code:    wallet.CodeUnrecognizedChain,
			Message: fmt.Sprintf("Unrecognized chain ID %d. Add an RPC endpoint for it first.", chainID),
		}
	}

	b, err := w.dial(ctx, url)
	if err != nil {
		return nil, &wallet.ProviderError{Code: wallet.CodeChainDisconnected, Message: fmt.Sprintf("dialing chain %d: %v", chainID, err)}
	}
	w.backends[chainID] = b
	return b, nil
}

type signer struct {
	key     *ecdsa.PrivateKey
	addr    common.Address
	backend Backend

	mu   sync.Mutex
	sent map[common.Hash]*types.Transaction
}

func (s *signer) Address() common.Address { return s.addr }

func (s *signer) ChainID(ctx context.Context) (int64, error) {
	id, err := s.backend.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading chain id: %w", err)
	}
	return id.Int64(), nil
}

func (s *signer) EstimateGas(ctx context.Context, req wallet.TxRequest) (uint64, error) {
	return s.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:  s.addr,
		To:    req.To,
		Data:  req.Data,
		Value: req.Value,
	})
}

func (s *signer) SendTransaction(ctx context.Context, req wallet.TxRequest) (*wallet.PendingTx, error) {
	chainID, err := s.backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading chain id: %w", err)
	}
	nonce, err := s.backend.PendingNonceAt(ctx, s.addr)
	if err != nil {
		return nil, fmt.Errorf("getting nonce: %w", err)
	}
	gasPrice, err := s.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting gas price: %w", err)
	}

	value := req.Value
	if value == nil {
		value = new(big.Int)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      req.Gas,
		To:       req.To,
		Value:    value,
		Data:     req.Data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	if err := s.backend.SendTransaction(ctx, signed); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sent[signed.Hash()] = signed
	s.mu.Unlock()

	return &wallet.PendingTx{Hash: signed.Hash(), GasPrice: gasPrice}, nil
}

func (s *signer) WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	s.mu.Lock()
	tx, ok := s.sent[hash]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("transaction %s was not sent by this signer", hash.Hex())
	}
	return bind.WaitMined(ctx, s.backend, tx)
}

func (s *signer) CodeAt(ctx context.Context, addr common.Address) ([]byte, error) {
	return evm.DeployedCode(ctx, s.backend, addr)
}

// Package wallettest provides an in-memory wallet for tests.
package wallettest

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/pendergraft/mintfactory/internal/wallet"
)

// Provider is a scriptable wallet.Provider. By default a switch request is
// approved and moves the wallet to the requested chain.
type Provider struct {
	mu sync.Mutex

	Addr  common.Address
	Chain int64

	AccountErr error
	ChainErr   error
	SignerErr  error

	// SwitchErr is returned from SwitchChain when set.
	SwitchErr error
	// IgnoreSwitch approves switches without changing the active chain.
	IgnoreSwitch bool
	// SwitchHook, when set, runs instead of the default switch behavior.
	SwitchHook func(ctx context.Context, chainID int64) error

	SwitchCalls []int64
	ChainReads  int

	Wallet *Signer
}

// NewProvider creates a provider for addr on chain. A zero chain means the
// wallet does not report one.
func NewProvider(addr common.Address, chain int64) *Provider {
	p := &Provider{Addr: addr, Chain: chain}
	p.Wallet = NewSigner(addr, p)
	return p
}

func (p *Provider) Account(ctx context.Context) (common.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Addr, p.AccountErr
}

func (p *Provider) ActiveChain(ctx context.Context) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ChainReads++
	if p.ChainErr != nil {
		return 0, p.ChainErr
	}
	return p.Chain, nil
}

func (p *Provider) SwitchChain(ctx context.Context, chainID int64) error {
	p.mu.Lock()
	p.SwitchCalls = append(p.SwitchCalls, chainID)
	hook := p.SwitchHook
	p.mu.Unlock()

	if hook != nil {
		return hook(ctx, chainID)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.SwitchErr != nil {
		return p.SwitchErr
	}
	if !p.IgnoreSwitch {
		p.Chain = chainID
	}
	return nil
}

func (p *Provider) Signer(ctx context.Context) (wallet.Signer, error) {
	if p.SignerErr != nil {
		return nil, p.SignerErr
	}
	return p.Wallet, nil
}

// SetChain moves the wallet to chainID.
func (p *Provider) SetChain(chainID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Chain = chainID
}

// Switches returns the chain ids passed to SwitchChain.
func (p *Provider) Switches() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int64(nil), p.SwitchCalls...)
}

func (p *Provider) activeChain() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Chain
}

// Signer is a scriptable wallet.Signer. Each transaction it sends is mined
// immediately into a receipt built from the exported fields.
type Signer struct {
	mu       sync.Mutex
	addr     common.Address
	provider *Provider

	// ChainIDOverride is reported by ChainID when non-zero.
	ChainIDOverride int64

	GasEstimate uint64
	GasPrice    *big.Int
	GasUsed     uint64
	BlockNumber uint64
	// Status is the receipt status for contract creations.
	Status uint64
	// ContractAddress is reported for contract creations.
	ContractAddress common.Address
	// Code is what CodeAt returns for ContractAddress.
	Code []byte

	EstimateFunc func(ctx context.Context, req wallet.TxRequest) (uint64, error)
	SendFunc     func(ctx context.Context, req wallet.TxRequest) (*wallet.PendingTx, error)
	WaitFunc     func(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	CodeErr      error

	Estimates []wallet.TxRequest
	Sent      []wallet.TxRequest
	receipts  map[common.Hash]*types.Receipt
}

// NewSigner creates a signer with successful defaults.
func NewSigner(addr common.Address, p *Provider) *Signer {
	return &Signer{
		addr:            addr,
		provider:        p,
		GasEstimate:     2_000_000,
		GasPrice:        big.NewInt(5_000_000_000),
		GasUsed:         1_800_000,
		BlockNumber:     100,
		Status:          types.ReceiptStatusSuccessful,
		ContractAddress: common.HexToAddress("0x00000000000000000000000000000000000c0de1"),
		Code:            []byte{0x00},
		receipts:        make(map[common.Hash]*types.Receipt),
	}
}

func (s *Signer) Address() common.Address { return s.addr }

func (s *Signer) ChainID(ctx context.Context) (int64, error) {
	if s.ChainIDOverride != 0 {
		return s.ChainIDOverride, nil
	}
	if s.provider != nil {
		return s.provider.activeChain(), nil
	}
	return 0, nil
}

func (s *Signer) EstimateGas(ctx context.Context, req wallet.TxRequest) (uint64, error) {
	s.mu.Lock()
	s.Estimates = append(s.Estimates, req)
	s.mu.Unlock()
	if s.EstimateFunc != nil {
		return s.EstimateFunc(ctx, req)
	}
	return s.GasEstimate, nil
}

func (s *Signer) SendTransaction(ctx context.Context, req wallet.TxRequest) (*wallet.PendingTx, error) {
	s.mu.Lock()
	s.Sent = append(s.Sent, req)
	nonce := len(s.Sent)
	s.mu.Unlock()

	if s.SendFunc != nil {
		return s.SendFunc(ctx, req)
	}

	hash := crypto.Keccak256Hash(s.addr.Bytes(), big.NewInt(int64(nonce)).Bytes())
	receipt := &types.Receipt{
		Status:            types.ReceiptStatusSuccessful,
		TxHash:            hash,
		GasUsed:           s.GasUsed,
		EffectiveGasPrice: new(big.Int).Set(s.GasPrice),
		BlockNumber:       new(big.Int).SetUint64(s.BlockNumber),
	}
	if req.To == nil {
		receipt.Status = s.Status
		receipt.ContractAddress = s.ContractAddress
	}

	s.mu.Lock()
	s.receipts[hash] = receipt
	s.mu.Unlock()

	return &wallet.PendingTx{Hash: hash, GasPrice: new(big.Int).Set(s.GasPrice)}, nil
}

func (s *Signer) WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	if s.WaitFunc != nil {
		return s.WaitFunc(ctx, hash)
	}
	s.mu.Lock()
	r, ok := s.receipts[hash]
	s.mu.Unlock()
	if !ok {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return r, nil
}

func (s *Signer) CodeAt(ctx context.Context, addr common.Address) ([]byte, error) {
	if s.CodeErr != nil {
		return nil, s.CodeErr
	}
	if addr == s.ContractAddress {
		return s.Code, nil
	}
	return nil, nil
}

// SentTransactions returns a copy of the sent requests.
func (s *Signer) SentTransactions() []wallet.TxRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]wallet.TxRequest(nil), s.Sent...)
}

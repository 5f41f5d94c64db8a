// Package jsonrpc implements wallet.Provider for a remote wallet that speaks
// EIP-1193 over JSON-RPC. The wallet holds the key; this package only asks it
// to switch chains and to sign and send transactions.
package jsonrpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/pendergraft/mintfactory/internal/chains/evm"
	"github.com/pendergraft/mintfactory/internal/wallet"
)

const defaultPollInterval = 2 * time.Second

// Option configures a Provider.
type Option func(*Provider)

// WithPollInterval sets how often receipts are polled while waiting.
func WithPollInterval(d time.Duration) Option {
	return func(p *Provider) {
		p.pollInterval = d
	}
}

// Provider talks to a remote wallet.
type Provider struct {
	rpc          *rpc.Client
	eth          *ethclient.Client
	pollInterval time.Duration
}

// Dial connects to the wallet at url.
func Dial(ctx context.Context, url string, opts ...Option) (*Provider, error) {
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dialing wallet: %w", err)
	}
	return New(c, opts...), nil
}

// New wraps an RPC client.
func New(c *rpc.Client, opts ...Option) *Provider {
	p := &Provider{rpc: c, eth: ethclient.NewClient(c), pollInterval: defaultPollInterval}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Close closes the connection.
func (p *Provider) Close() {
	p.rpc.Close()
}

// Account returns the first authorized account, or the zero address.
func (p *Provider) Account(ctx context.Context) (common.Address, error) {
	var accounts []common.Address
	if err := p.rpc.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return common.Address{}, err
	}
	if len(accounts) == 0 {
		return common.Address{}, nil
	}
	return accounts[0], nil
}

func (p *Provider) ActiveChain(ctx context.Context) (int64, error) {
	id, err := p.eth.ChainID(ctx)
	if err != nil {
		return 0, err
	}
	return id.Int64(), nil
}

type switchChainParams struct {
	ChainID hexutil.Uint64 `json:"chainId"`
}

// SwitchChain sends wallet_switchEthereumChain. The call blocks until the
// user answers the wallet prompt.
func (p *Provider) SwitchChain(ctx context.Context, chainID int64) error {
	return p.rpc.CallContext(ctx, nil, "wallet_switchEthereumChain", switchChainParams{ChainID: hexutil.Uint64(chainID)})
}

func (p *Provider) Signer(ctx context.Context) (wallet.Signer, error) {
	addr, err := p.Account(ctx)
	if err != nil {
		return nil, err
	}
	if addr == (common.Address{}) {
		return nil, wallet.ErrWalletNotConnected
	}
	return &signer{p: p, addr: addr}, nil
}

type signer struct {
	p    *Provider
	addr common.Address
}

type sendTxArgs struct {
	From     common.Address  `json:"from"`
	To       *common.Address `json:"to,omitempty"`
	Gas      hexutil.Uint64  `json:"gas"`
	GasPrice *hexutil.Big    `json:"gasPrice,omitempty"`
	Value    *hexutil.Big    `json:"value,omitempty"`
	Data     hexutil.Bytes   `json:"data"`
}

func (s *signer) Address() common.Address { return s.addr }

func (s *signer) ChainID(ctx context.Context) (int64, error) {
	return s.p.ActiveChain(ctx)
}

func (s *signer) EstimateGas(ctx context.Context, req wallet.TxRequest) (uint64, error) {
	return s.p.eth.EstimateGas(ctx, ethereum.CallMsg{
		From:  s.addr,
		To:    req.To,
		Data:  req.Data,
		Value: req.Value,
	})
}

// SendTransaction asks the wallet to sign and broadcast. It blocks for the
// user's signing decision.
func (s *signer) SendTransaction(ctx context.Context, req wallet.TxRequest) (*wallet.PendingTx, error) {
	gasPrice, err := s.p.eth.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting gas price: %w", err)
	}

	args := sendTxArgs{
		From:     s.addr,
		To:       req.To,
		Gas:      hexutil.Uint64(req.Gas),
		GasPrice: (*hexutil.Big)(gasPrice),
		Data:     req.Data,
	}
	if req.Value != nil {
		args.Value = (*hexutil.Big)(req.Value)
	}

	var hash common.Hash
	if err := s.p.rpc.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return nil, err
	}
	return &wallet.PendingTx{Hash: hash, GasPrice: gasPrice}, nil
}

// WaitMined polls for the receipt until it exists or ctx is done.
func (s *signer) WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(s.p.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := s.p.eth.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("getting receipt %s: %w", hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *signer) CodeAt(ctx context.Context, addr common.Address) ([]byte, error) {
	return evm.DeployedCode(ctx, s.p.eth, addr)
}

var _ wallet.Provider = (*Provider)(nil)


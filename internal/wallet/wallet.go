// Package wallet defines the boundary between the deploy pipeline and the
// user's wallet. Everything the pipeline needs from a wallet goes through
// Provider and Signer, so a remote EIP-1193 wallet, a local key and a test
// fake are interchangeable.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
)

// ErrWalletNotConnected means no account is available.
var ErrWalletNotConnected = errors.New("wallet not connected")

// EIP-1193 and JSON-RPC error codes reported by wallets.
const (
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeUnsupportedMethod = 4200
	CodeDisconnected      = 4900
	CodeChainDisconnected = 4901
	CodeUnrecognizedChain = 4902
	CodeServerError       = -32000
	CodeRequestPending    = -32002
)

// ProviderError is an error reported by the wallet with its raw code.
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("wallet error %d: %s", e.Code, e.Message)
}

// AsProviderError extracts a provider error from err. JSON-RPC errors from
// go-ethereum's rpc package are converted so callers see one shape.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	var re rpc.Error
	if errors.As(err, &re) {
		return &ProviderError{Code: re.ErrorCode(), Message: re.Error()}, true
	}
	return nil, false
}

// TxRequest is a transaction to estimate or send. A nil To creates a contract.
type TxRequest struct {
	To    *common.Address
	Data  []byte
	Value *big.Int
	Gas   uint64
}

// PendingTx is a submitted transaction.
type PendingTx struct {
	Hash     common.Hash
	GasPrice *big.Int
}

// Signer sends transactions from the connected account. A Signer is used by
// one pipeline invocation at a time.
type Signer interface {
	Address() common.Address
	ChainID(ctx context.Context) (int64, error)
	EstimateGas(ctx context.Context, req TxRequest) (uint64, error)
	SendTransaction(ctx context.Context, req TxRequest) (*PendingTx, error)
	WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	CodeAt(ctx context.Context, addr common.Address) ([]byte, error)
}

// Provider is a connected wallet.
type Provider interface {
	Account(ctx context.Context) (common.Address, error)
	ActiveChain(ctx context.Context) (int64, error)
	SwitchChain(ctx context.Context, chainID int64) error
	Signer(ctx context.Context) (Signer, error)
}

// Session is a snapshot of the wallet's account and active chain.
type Session struct {
	Address       common.Address
	ActiveChainID int64
	HasChain      bool
}

// OnChain reports whether the session is known to be on chainID.
func (s Session) OnChain(chainID int64) bool {
	return s.HasChain && s.ActiveChainID == chainID
}

// ReadSession reads a fresh session. A wallet that cannot report its chain
// yields a session with HasChain false.
func ReadSession(ctx context.Context, p Provider) (Session, error) {
	addr, err := p.Account(ctx)
	if err != nil {
		if errors.Is(err, ErrWalletNotConnected) {
			return Session{}, err
		}
		if pe, ok := AsProviderError(err); ok && isDisconnect(pe.Code) {
			return Session{}, fmt.Errorf("%w: %v", ErrWalletNotConnected, pe)
		}
		return Session{}, fmt.Errorf("reading account: %w", err)
	}
	if addr == (common.Address{}) {
		return Session{}, ErrWalletNotConnected
	}

	s := Session{Address: addr}
	chainID, err := p.ActiveChain(ctx)
	if err == nil && chainID > 0 {
		s.ActiveChainID = chainID
		s.HasChain = true
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Session{}, ctxErr
	}
	return s, nil
}

func isDisconnect(code int) bool {
	switch code {
	case CodeUnauthorized, CodeDisconnected, CodeChainDisconnected:
		return true
	}
	return false
}

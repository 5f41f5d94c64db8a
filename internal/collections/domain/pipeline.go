package domain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/pendergraft/mintfactory/internal/artifacts"
	"github.com/pendergraft/mintfactory/internal/chains"
	"github.com/pendergraft/mintfactory/internal/chains/evm"
	"github.com/pendergraft/mintfactory/internal/wallet"
)

const (
	stepValidate  = "validate"
	stepPrepare   = "prepare"
	stepSession   = "session"
	stepReconcile = "reconcile"
	stepEstimate  = "estimate"
	stepExecute   = "execute"
	stepVerify    = "verify"
	stepConfigure = "configure"
	stepReport    = "report"
)

// deployment is the state carried between steps of one invocation.
type deployment struct {
	params    DeploymentParams
	mintPrice *big.Int
	chain     chains.ChainDescriptor
	artifact  *artifacts.Artifact

	session wallet.Session
	signer  wallet.Signer

	deployData  []byte
	gasEstimate uint64
	gasLimit    uint64

	pending *wallet.PendingTx
	receipt *types.Receipt
	match   evm.MatchType

	warnings []Warning
	result   *DeploymentResult
}

type step struct {
	name string
	run  func(ctx context.Context, d *deployment) error
}

func (s *service) steps() []step {
	return []step{
		{stepSession, s.readSession},
		{stepReconcile, s.reconcile},
		{stepEstimate, s.estimate},
		{stepExecute, s.execute},
		{stepVerify, s.verify},
		{stepConfigure, s.configure},
		{stepReport, s.report},
	}
}

func (d *deployment) warn(w Warning) {
	d.warnings = append(d.warnings, w)
}

func (d *deployment) contractAddress() common.Address {
	if d.receipt == nil {
		return common.Address{}
	}
	return d.receipt.ContractAddress
}

// fail tags err with kind. Caller cancellation is returned as-is so that
// errors.Is(err, context.Canceled) holds.
func (d *deployment) fail(ctx context.Context, step string, kind, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", step, ctxErr)
	}
	var te *timeoutError
	if errors.As(err, &te) {
		kind = ErrDeploymentTimedOut
	}
	return &Error{Kind: kind, Step: step, Chain: d.chain.DisplayName, Err: err}
}

type timeoutError struct {
	what  string
	limit time.Duration
}

func (e *timeoutError) Error() string {
	return fmt.Sprintf("waiting for %s exceeded %s", e.what, e.limit)
}

// suspend runs fn, a call that may wait on a human or on block production,
// bounded by limit when limit is positive.
func suspend[T any](ctx context.Context, what string, limit time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if limit <= 0 {
		return fn(ctx)
	}

	tctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	v, err := fn(tctx)
	if err != nil && ctx.Err() == nil && errors.Is(tctx.Err(), context.DeadlineExceeded) {
		return v, &timeoutError{what: what, limit: limit}
	}
	return v, err
}

func isArtifactMissing(err error) bool {
	return errors.Is(err, artifacts.ErrArtifactNotFound)
}

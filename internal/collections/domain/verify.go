package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/pendergraft/mintfactory/internal/chains/evm"
)

// verify requires both a successful receipt and code at the contract
// address. Either check alone can be fooled by a misbehaving provider.
func (s *service) verify(ctx context.Context, d *deployment) error {
	r := d.receipt

	if r.Status != types.ReceiptStatusSuccessful {
		return s.verificationFailed(ctx, d, ErrTransactionReverted,
			fmt.Errorf("receipt status %d for %s", r.Status, r.TxHash.Hex()))
	}
	if r.ContractAddress == (common.Address{}) {
		return s.verificationFailed(ctx, d, ErrDeploymentVerificationFailed,
			errors.New("receipt has no contract address"))
	}

	code, err := d.signer.CodeAt(ctx, r.ContractAddress)
	if err != nil {
		return d.fail(ctx, stepVerify, ErrNetworkError, err)
	}
	if len(code) == 0 {
		return s.verificationFailed(ctx, d, ErrDeploymentVerificationFailed,
			fmt.Errorf("eth_getCode returned 0x for %s", r.ContractAddress.Hex()))
	}

	if len(d.artifact.DeployedBytecode) > 0 {
		d.match = evm.CompareBytecode(code, d.artifact.DeployedBytecode).Match
	}

	s.observer.Observe(ctx, Event{Type: EventVerificationPassed, ChainID: d.chain.ChainID, TxHash: r.TxHash, Address: r.ContractAddress})
	return nil
}

func (s *service) verificationFailed(ctx context.Context, d *deployment, kind, err error) error {
	s.observer.Observe(ctx, Event{
		Type:    EventVerificationFailed,
		ChainID: d.chain.ChainID,
		TxHash:  d.receipt.TxHash,
		Address: d.receipt.ContractAddress,
		Err:     err,
	})
	return d.fail(ctx, stepVerify, kind, err)
}

package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/lmittmann/w3"

	"github.com/pendergraft/mintfactory/internal/wallet"
)

var funcSetPublicMint = w3.MustNewFunc("setPublicMint(bool)", "")

// configure enables public minting on the new contract regardless of the
// constructor's isPublicMint flag. It never fails the deployment: any error
// becomes a warning on the result.
func (s *service) configure(ctx context.Context, d *deployment) error {
	if err := s.enablePublicMint(ctx, d); err != nil {
		d.warn(Warning{
			Kind:    ErrPostDeployConfigFailed,
			Code:    WarningPostDeployConfig,
			Message: fmt.Sprintf("could not enable public minting; enable it manually: %v", err),
		})
		s.observer.Observe(ctx, Event{Type: EventPostDeployFailed, ChainID: d.chain.ChainID, Address: d.receipt.ContractAddress, Err: err})
		return nil
	}

	s.observer.Observe(ctx, Event{Type: EventPostDeployConfigured, ChainID: d.chain.ChainID, Address: d.receipt.ContractAddress})
	return nil
}

func (s *service) enablePublicMint(ctx context.Context, d *deployment) error {
	data, err := funcSetPublicMint.EncodeArgs(true)
	if err != nil {
		return fmt.Errorf("encoding setPublicMint: %w", err)
	}

	to := d.receipt.ContractAddress
	est, err := d.signer.EstimateGas(ctx, wallet.TxRequest{To: &to, Data: data})
	if err != nil {
		return fmt.Errorf("estimating setPublicMint: %w", providerMessage(err))
	}

	pending, err := suspend(ctx, "transaction signing", s.timeouts.Signing, func(ctx context.Context) (*wallet.PendingTx, error) {
		return d.signer.SendTransaction(ctx, wallet.TxRequest{To: &to, Data: data, Gas: GasLimit(est)})
	})
	if err != nil {
		return fmt.Errorf("sending setPublicMint: %w", providerMessage(err))
	}

	receipt, err := s.waitMined(ctx, d.signer, pending.Hash)
	if err != nil {
		return fmt.Errorf("waiting for setPublicMint: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return errors.New("setPublicMint reverted")
	}
	return nil
}

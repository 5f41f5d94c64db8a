package domain

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/pendergraft/mintfactory/internal/wallet"
)

// execute sends the creation transaction and waits for it to be mined. The
// pending hash is published before waiting.
func (s *service) execute(ctx context.Context, d *deployment) error {
	pending, err := suspend(ctx, "transaction signing", s.timeouts.Signing, func(ctx context.Context) (*wallet.PendingTx, error) {
		return d.signer.SendTransaction(ctx, wallet.TxRequest{Data: d.deployData, Gas: d.gasLimit})
	})
	if err != nil {
		return d.fail(ctx, stepExecute, kindFor(signKinds, err), providerMessage(err))
	}
	d.pending = pending

	s.observer.Observe(ctx, Event{Type: EventTxSubmitted, ChainID: d.chain.ChainID, TxHash: pending.Hash})

	receipt, err := s.waitMined(ctx, d.signer, pending.Hash)
	if err != nil {
		return d.fail(ctx, stepExecute, ErrNetworkError, err)
	}
	d.receipt = receipt

	s.observer.Observe(ctx, Event{
		Type:    EventTxMined,
		ChainID: d.chain.ChainID,
		TxHash:  pending.Hash,
		Address: receipt.ContractAddress,
	})
	return nil
}

func (s *service) waitMined(ctx context.Context, signer wallet.Signer, hash common.Hash) (*types.Receipt, error) {
	receipt, err := suspend(ctx, "transaction to be mined", s.timeouts.Mining, func(ctx context.Context) (*types.Receipt, error) {
		return signer.WaitMined(ctx, hash)
	})
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, errors.New("provider returned no receipt")
	}
	return receipt, nil
}

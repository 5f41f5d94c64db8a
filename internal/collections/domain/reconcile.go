package domain

import (
	"context"
	"fmt"

	"github.com/pendergraft/mintfactory/internal/wallet"
)

func (s *service) readSession(ctx context.Context, d *deployment) error {
	sess, err := wallet.ReadSession(ctx, s.wallet)
	if err != nil {
		return d.fail(ctx, stepSession, kindFor(readKinds, err), err)
	}
	d.session = sess
	return nil
}

// reconcile puts the wallet on the target chain. At most one switch is
// requested, and its outcome is re-verified from a fresh session read and
// from the signer's own view of the network.
func (s *service) reconcile(ctx context.Context, d *deployment) error {
	target := d.chain.ChainID

	if !d.session.OnChain(target) {
		s.observer.Observe(ctx, Event{Type: EventSwitchRequested, ChainID: target, ChainName: d.chain.DisplayName})

		_, err := suspend(ctx, "network switch approval", s.timeouts.SwitchApproval, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.wallet.SwitchChain(ctx, target)
		})
		if err != nil {
			return d.fail(ctx, stepReconcile, kindFor(switchKinds, err), err)
		}

		sess, err := wallet.ReadSession(ctx, s.wallet)
		if err != nil {
			return d.fail(ctx, stepReconcile, kindFor(readKinds, err), err)
		}
		if !sess.OnChain(target) {
			return d.fail(ctx, stepReconcile, ErrNetworkMismatchAfterSwitch,
				fmt.Errorf("wallet reports chain %d after switching to %d", sess.ActiveChainID, target))
		}
		d.session = sess

		s.observer.Observe(ctx, Event{Type: EventSwitchConfirmed, ChainID: target, ChainName: d.chain.DisplayName})
	}

	signer, err := s.wallet.Signer(ctx)
	if err != nil {
		return d.fail(ctx, stepReconcile, kindFor(readKinds, err), err)
	}
	signerChain, err := signer.ChainID(ctx)
	if err != nil {
		return d.fail(ctx, stepReconcile, ErrNetworkError, err)
	}
	if signerChain != target {
		return d.fail(ctx, stepReconcile, ErrNetworkMismatchAfterSwitch,
			fmt.Errorf("signer is on chain %d, want %d", signerChain, target))
	}

	d.signer = signer
	return nil
}

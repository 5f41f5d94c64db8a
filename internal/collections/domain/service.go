// Package domain contains the NFT collection deployment workflow.
//
// A deployment runs as one sequential pipeline: resolve the target chain and
// load the contract artifact, reconcile the wallet's network, estimate gas,
// send the creation transaction, verify the contract on chain, enable public
// minting, and report. Nothing is retried; every fatal failure is returned as
// an *Error tagged with one of the ErrX kinds.
package domain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pendergraft/mintfactory/internal/artifacts"
	"github.com/pendergraft/mintfactory/internal/chains"
	"github.com/pendergraft/mintfactory/internal/validation"
	"github.com/pendergraft/mintfactory/internal/wallet"
)

// Service deploys NFT collections.
type Service interface {
	Deploy(ctx context.Context, params DeploymentParams) (*DeploymentResult, error)
}

// Config wires a Service.
type Config struct {
	Wallet    wallet.Provider
	Artifacts artifacts.Loader
	// Chains defaults to the built-in registry.
	Chains   *chains.Registry
	Observer Observer
	Timeouts Timeouts
	// StrictChains fails unknown chain aliases instead of deploying to the
	// registry's default chain.
	StrictChains bool
}

type service struct {
	wallet   wallet.Provider
	loader   artifacts.Loader
	registry *chains.Registry
	observer Observer
	timeouts Timeouts
	strict   bool
}

// NewService creates a deployment service.
func NewService(cfg Config) Service {
	s := &service{
		wallet:   cfg.Wallet,
		loader:   cfg.Artifacts,
		registry: cfg.Chains,
		observer: cfg.Observer,
		timeouts: cfg.Timeouts,
		strict:   cfg.StrictChains,
	}
	if s.registry == nil {
		s.registry = chains.DefaultRegistry()
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	return s
}

// Deploy runs the deployment pipeline for params.
func (s *service) Deploy(ctx context.Context, params DeploymentParams) (*DeploymentResult, error) {
	start := time.Now()
	d := &deployment{params: params}

	result, err := s.run(ctx, d)

	chainName := d.chain.DisplayName
	if chainName == "" {
		chainName = "unresolved"
	}
	s.observer.Observe(ctx, Event{
		Type:      EventDeployFinished,
		ChainID:   d.chain.ChainID,
		ChainName: chainName,
		Standard:  string(params.Standard),
		Address:   d.contractAddress(),
		Err:       err,
		Duration:  time.Since(start),
	})
	return result, err
}

func (s *service) run(ctx context.Context, d *deployment) (*DeploymentResult, error) {
	mintPrice, err := validateParams(d.params)
	if err != nil {
		return nil, err
	}
	d.mintPrice = mintPrice

	if err := s.prepare(ctx, d); err != nil {
		return nil, err
	}

	for _, st := range s.steps() {
		stepStart := time.Now()
		err := st.run(ctx, d)
		s.observer.Observe(ctx, Event{
			Type:     EventStepFinished,
			Step:     st.name,
			ChainID:  d.chain.ChainID,
			Err:      err,
			Duration: time.Since(stepStart),
		})
		if err != nil {
			return nil, err
		}
	}
	return d.result, nil
}

// prepare resolves the chain and loads the artifact concurrently.
func (s *service) prepare(ctx context.Context, d *deployment) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		desc, defaulted := s.registry.ResolveOrDefault(d.params.Chain)
		if defaulted {
			if s.strict {
				return &Error{Kind: ErrUnknownChain, Step: stepPrepare, Err: fmt.Errorf("no chain registered for %q", d.params.Chain)}
			}
			d.warn(Warning{
				Kind:    ErrUnknownChain,
				Code:    WarningChainDefaulted,
				Message: fmt.Sprintf("unknown chain %q; deploying to %s (%d)", d.params.Chain, desc.DisplayName, desc.ChainID),
			})
		}
		d.chain = desc
		return nil
	})

	g.Go(func() error {
		a, err := s.loader.Load(gctx, d.params.Standard)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			kind := ErrNetworkError
			switch {
			case isArtifactMissing(err):
				kind = ErrArtifactNotFound
			case errors.Is(err, artifacts.ErrInvalidArtifact):
				kind = ErrInvalidArtifact
			}
			return &Error{Kind: kind, Step: stepPrepare, Err: err}
		}
		d.artifact = a
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	s.observer.Observe(ctx, Event{Type: EventChainResolved, ChainID: d.chain.ChainID, ChainName: d.chain.DisplayName})
	return nil
}

func validateParams(p DeploymentParams) (*big.Int, error) {
	invalid := func(err error) error {
		return &Error{Kind: ErrInvalidParams, Step: stepValidate, Err: err}
	}

	if err := validation.ValidateCollectionName(p.Name); err != nil {
		return nil, invalid(err)
	}
	if err := validation.ValidateSymbol(p.Symbol); err != nil {
		return nil, invalid(err)
	}
	if err := validation.ValidateMaxSupply(p.MaxSupply); err != nil {
		return nil, invalid(err)
	}
	if err := validation.ValidateRoyaltyBps(p.RoyaltyBps); err != nil {
		return nil, invalid(err)
	}
	if p.Standard.ContractName() == "" {
		return nil, invalid(fmt.Errorf("%w: %q", artifacts.ErrUnknownStandard, p.Standard))
	}
	price, err := validation.ParseMintPrice(p.MintPrice)
	if err != nil {
		return nil, invalid(err)
	}
	return price, nil
}

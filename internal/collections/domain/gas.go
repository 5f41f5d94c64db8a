package domain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/pendergraft/mintfactory/internal/artifacts"
	"github.com/pendergraft/mintfactory/internal/wallet"
)

// GasLimit applies the fixed 50% safety margin: ceil(estimate * 1.5).
func GasLimit(estimate uint64) uint64 {
	return estimate + (estimate+1)/2
}

// ConstructorArgs returns the collection constructor arguments in contract
// order. The connecting wallet is both royalty recipient and owner.
func ConstructorArgs(p DeploymentParams, mintPriceWei *big.Int, wallet common.Address) []any {
	return []any{
		p.Name,
		p.Symbol,
		p.BaseTokenURI,
		new(big.Int).SetUint64(p.MaxSupply),
		new(big.Int).SetUint64(uint64(p.RoyaltyBps)),
		wallet,
		mintPriceWei,
		p.IsPublicMint,
		wallet,
	}
}

// DeployData returns the artifact's creation code followed by the ABI
// encoded constructor arguments.
func DeployData(a *artifacts.Artifact, args []any) ([]byte, error) {
	inputs := a.ABI.Constructor.Inputs
	if len(inputs) != len(args) {
		return nil, fmt.Errorf("%w: constructor takes %d arguments, collection has %d", artifacts.ErrInvalidArtifact, len(inputs), len(args))
	}

	values := make([]any, len(args))
	for i, arg := range args {
		v, err := coerce(inputs[i].Type, arg)
		if err != nil {
			return nil, fmt.Errorf("%w: argument %s: %v", artifacts.ErrInvalidArtifact, inputs[i].Name, err)
		}
		values[i] = v
	}

	packed, err := a.ABI.Pack("", values...)
	if err != nil {
		return nil, fmt.Errorf("%w: packing constructor: %v", artifacts.ErrInvalidArtifact, err)
	}
	return append(bytes.Clone(a.Bytecode), packed...), nil
}

// coerce converts a *big.Int to the native Go type the ABI packer expects
// for 8 to 64 bit integers. Wider integers stay *big.Int.
func coerce(t abi.Type, v any) (any, error) {
	n, ok := v.(*big.Int)
	if !ok || (t.T != abi.UintTy && t.T != abi.IntTy) {
		return v, nil
	}
	if t.T == abi.UintTy && (n.Sign() < 0 || n.BitLen() > t.Size) {
		return nil, fmt.Errorf("%s does not fit in %s", n, t)
	}
	if t.T == abi.IntTy && n.BitLen() >= t.Size {
		return nil, fmt.Errorf("%s does not fit in %s", n, t)
	}

	switch t.T {
	case abi.UintTy:
		switch t.Size {
		case 8:
			return uint8(n.Uint64()), nil
		case 16:
			return uint16(n.Uint64()), nil
		case 32:
			return uint32(n.Uint64()), nil
		case 64:
			return n.Uint64(), nil
		}
	case abi.IntTy:
		switch t.Size {
		case 8:
			return int8(n.Int64()), nil
		case 16:
			return int16(n.Int64()), nil
		case 32:
			return int32(n.Int64()), nil
		case 64:
			return n.Int64(), nil
		}
	}
	return n, nil
}

func (s *service) estimate(ctx context.Context, d *deployment) error {
	args := ConstructorArgs(d.params, d.mintPrice, d.session.Address)
	data, err := DeployData(d.artifact, args)
	if err != nil {
		return d.fail(ctx, stepEstimate, ErrInvalidArtifact, err)
	}
	d.deployData = data

	est, err := d.signer.EstimateGas(ctx, wallet.TxRequest{Data: data})
	if err != nil {
		return d.fail(ctx, stepEstimate, ErrGasEstimationFailed, providerMessage(err))
	}
	if est == 0 {
		return d.fail(ctx, stepEstimate, ErrGasEstimationFailed, errors.New("node returned a zero gas estimate"))
	}

	d.gasEstimate = est
	d.gasLimit = GasLimit(est)
	return nil
}

// providerMessage keeps the provider's own text, which usually carries the
// revert reason, while staying matchable with errors.Is.
func providerMessage(err error) error {
	if pe, ok := wallet.AsProviderError(err); ok && pe.Message != "" {
		return &messageError{msg: pe.Message, err: err}
	}
	return err
}

type messageError struct {
	msg string
	err error
}

func (e *messageError) Error() string { return e.msg }
func (e *messageError) Unwrap() error { return e.err }

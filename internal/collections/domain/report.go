package domain

import (
	"context"
	"math/big"

	"github.com/lmittmann/w3"
)

// DeploymentCost is gasUsed * gasPrice.
func DeploymentCost(gasUsed uint64, gasPrice *big.Int) *big.Int {
	if gasPrice == nil {
		return new(big.Int)
	}
	return new(big.Int).Mul(new(big.Int).SetUint64(gasUsed), gasPrice)
}

// report builds the result. Earlier steps guarantee a verified receipt, so
// a missing one is a programming error.
func (s *service) report(_ context.Context, d *deployment) error {
	r := d.receipt
	if r == nil || d.pending == nil {
		panic("collections: report reached without a mined deployment")
	}

	price := r.EffectiveGasPrice
	if price == nil || price.Sign() == 0 {
		price = d.pending.GasPrice
	}
	cost := DeploymentCost(r.GasUsed, price)

	var block uint64
	if r.BlockNumber != nil {
		block = r.BlockNumber.Uint64()
	}

	var effective *big.Int
	if price != nil {
		effective = new(big.Int).Set(price)
	}

	d.result = &DeploymentResult{
		ContractAddress:   r.ContractAddress,
		TransactionHash:   d.pending.Hash,
		BlockNumber:       block,
		GasUsed:           r.GasUsed,
		GasLimit:          d.gasLimit,
		EffectiveGasPrice: effective,
		DeploymentCostWei: cost,
		DeploymentCost:    w3.FromWei(cost, 18),
		NativeSymbol:      d.chain.NativeSymbol,
		ChainID:           d.chain.ChainID,
		ChainName:         d.chain.DisplayName,
		Standard:          d.params.Standard,
		Deployer:          d.session.Address,
		BytecodeMatch:     d.match,
		Warnings:          d.warnings,
	}
	return nil
}

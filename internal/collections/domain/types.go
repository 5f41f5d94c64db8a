package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pendergraft/mintfactory/internal/artifacts"
	"github.com/pendergraft/mintfactory/internal/chains/evm"
)

// DeploymentParams is the user's collection form.
type DeploymentParams struct {
	Name         string             `json:"name"`
	Symbol       string             `json:"symbol"`
	BaseTokenURI string             `json:"baseTokenURI"`
	MaxSupply    uint64             `json:"maxSupply"`
	RoyaltyBps   uint16             `json:"royaltyBps"`
	MintPrice    string             `json:"mintPrice"`
	IsPublicMint bool               `json:"isPublicMint"`
	Standard     artifacts.Standard `json:"standard"`
	Chain        string             `json:"chain"`
}

// Warning codes.
const (
	WarningPostDeployConfig = "POST_DEPLOY_CONFIG_FAILED"
	WarningChainDefaulted   = "CHAIN_DEFAULTED"
)

// Warning is an advisory attached to a successful deployment.
type Warning struct {
	Kind    error  `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DeploymentResult describes a verified deployment. It is built once, after
// every fatal check has passed.
type DeploymentResult struct {
	ContractAddress   common.Address     `json:"contractAddress"`
	TransactionHash   common.Hash        `json:"transactionHash"`
	BlockNumber       uint64             `json:"blockNumber"`
	GasUsed           uint64             `json:"gasUsed"`
	GasLimit          uint64             `json:"gasLimit"`
	EffectiveGasPrice *big.Int           `json:"effectiveGasPrice"`
	DeploymentCostWei *big.Int           `json:"deploymentCostWei"`
	DeploymentCost    string             `json:"deploymentCost"`
	NativeSymbol      string             `json:"nativeSymbol"`
	ChainID           int64              `json:"chainId"`
	ChainName         string             `json:"chainName"`
	Standard          artifacts.Standard `json:"standard"`
	Deployer          common.Address     `json:"deployer"`
	BytecodeMatch     evm.MatchType      `json:"bytecodeMatch,omitempty"`
	Warnings          []Warning          `json:"warnings,omitempty"`
}

// HasWarning reports whether a warning with code is attached.
func (r *DeploymentResult) HasWarning(code string) bool {
	for _, w := range r.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

// Timeouts bound the pipeline's suspension points. A zero value waits
// until the caller's context ends.
type Timeouts struct {
	SwitchApproval time.Duration
	Signing        time.Duration
	Mining         time.Duration
}

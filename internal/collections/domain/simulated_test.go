package domain_test

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pendergraft/mintfactory/internal/artifacts"
	"github.com/pendergraft/mintfactory/internal/artifacts/artifactstest"
	"github.com/pendergraft/mintfactory/internal/chains"
	"github.com/pendergraft/mintfactory/internal/chains/evm"
	"github.com/pendergraft/mintfactory/internal/collections/domain"
	"github.com/pendergraft/mintfactory/internal/wallet/keyed"
	"github.com/pendergraft/mintfactory/internal/wallet/wallettest"
)

var simRegistry = chains.NewRegistry(wallettest.SimulatedChainID, chains.ChainDescriptor{
	ChainID:      wallettest.SimulatedChainID,
	DisplayName:  "Simulated",
	Aliases:      []string{"SIM", "LOCAL"},
	NativeSymbol: "ETH",
	Testnet:      true,
})

func TestDeploy_SimulatedChain(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	addr := crypto.PubkeyToAddress(key.PublicKey)

	sim := wallettest.NewSimulatedChain(t, addr)
	w := keyed.New(key, keyed.WithBackend(wallettest.SimulatedChainID, sim.Client()))

	svc := domain.NewService(domain.Config{
		Wallet:    w,
		Artifacts: artifactstest.Loader(),
		Chains:    simRegistry,
		Timeouts:  domain.Timeouts{Mining: 30 * time.Second},
	})

	for _, std := range []artifacts.Standard{artifacts.ERC721, artifacts.ERC1155} {
		t.Run(string(std), func(t *testing.T) {
			params := validParams()
			params.Chain = "sim"
			params.Standard = std

			result, err := svc.Deploy(context.Background(), params)
			require.NoError(t, err)

			assert.Equal(t, wallettest.SimulatedChainID, result.ChainID)
			assert.Equal(t, addr, result.Deployer)
			assert.Equal(t, evm.MatchFull, result.BytecodeMatch)
			assert.Empty(t, result.Warnings)
			assert.NotZero(t, result.BlockNumber)

			want := domain.DeploymentCost(result.GasUsed, result.EffectiveGasPrice)
			assert.Equal(t, 0, want.Cmp(result.DeploymentCostWei))
			assert.LessOrEqual(t, result.GasUsed, result.GasLimit)

			code, err := sim.Client().CodeAt(context.Background(), result.ContractAddress, nil)
			require.NoError(t, err)
			assert.NotEmpty(t, code)
		})
	}
}

func TestDeploy_SimulatedChain_EmptyRuntime(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	addr := crypto.PubkeyToAddress(key.PublicKey)

	sim := wallettest.NewSimulatedChain(t, addr)
	w := keyed.New(key, keyed.WithBackend(wallettest.SimulatedChainID, sim.Client()))

	svc := domain.NewService(domain.Config{
		Wallet:    w,
		Artifacts: artifactstest.WithBytecode(mustHex(artifactstest.EmptyRuntimeCode)),
		Chains:    simRegistry,
		Timeouts:  domain.Timeouts{Mining: 30 * time.Second},
	})

	params := validParams()
	params.Chain = "LOCAL"

	_, err = svc.Deploy(context.Background(), params)
	assert.ErrorIs(t, err, domain.ErrDeploymentVerificationFailed)
}

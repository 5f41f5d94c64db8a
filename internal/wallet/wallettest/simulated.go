package wallettest

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/ethereum/go-ethereum/params"
)

// SimulatedChainID is the chain id of the go-ethereum simulated backend.
const SimulatedChainID int64 = 1337

// NewSimulatedChain starts an in-memory chain funding each address with
// 100 ether. Blocks are committed in the background so that waiting for a
// receipt behaves as it does on a live network.
func NewSimulatedChain(t testing.TB, funded ...common.Address) *simulated.Backend {
	t.Helper()

	alloc := types.GenesisAlloc{}
	for _, addr := range funded {
		alloc[addr] = types.Account{Balance: new(big.Int).Mul(big.NewInt(100), big.NewInt(params.Ether))}
	}
	sim := simulated.NewBackend(alloc)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sim.Commit()
			}
		}
	}()

	t.Cleanup(func() {
		cancel()
		<-done
		_ = sim.Close()
	})
	return sim
}

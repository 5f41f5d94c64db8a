package domain

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pendergraft/mintfactory/internal/artifacts"
	"github.com/pendergraft/mintfactory/internal/artifacts/artifactstest"
)

func TestGasLimit(t *testing.T) {
	tests := []struct {
		estimate uint64
		want     uint64
	}{
		{0, 0},
		{1, 2},
		{2, 3},
		{3, 5},
		{21_000, 31_500},
		{2_000_000, 3_000_000},
		{2_000_001, 3_000_002},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GasLimit(tt.estimate), "estimate %d", tt.estimate)
	}
}

func TestDeployData_ArgumentMismatch(t *testing.T) {
	a, err := artifactstest.Loader().Load(context.Background(), artifacts.ERC721)
	require.NoError(t, err)

	_, err = DeployData(a, []any{"only", "two"})
	assert.ErrorIs(t, err, artifacts.ErrInvalidArtifact)
}

func TestDeployData_AppendsToBytecodeCopy(t *testing.T) {
	a, err := artifactstest.Loader().Load(context.Background(), artifacts.ERC721)
	require.NoError(t, err)
	original := append([]byte(nil), a.Bytecode...)

	p := DeploymentParams{Name: "A", Symbol: "A", MaxSupply: 1}
	owner := common.HexToAddress("0x01")

	data, err := DeployData(a, ConstructorArgs(p, new(big.Int), owner))
	require.NoError(t, err)
	assert.Greater(t, len(data), len(a.Bytecode))
	assert.Equal(t, original, a.Bytecode)
}

func TestCoerce(t *testing.T) {
	uint16Ty, err := abi.NewType("uint16", "", nil)
	require.NoError(t, err)
	uint96Ty, err := abi.NewType("uint96", "", nil)
	require.NoError(t, err)
	int8Ty, err := abi.NewType("int8", "", nil)
	require.NoError(t, err)

	v, err := coerce(uint16Ty, big.NewInt(500))
	require.NoError(t, err)
	assert.Equal(t, uint16(500), v)

	_, err = coerce(uint16Ty, big.NewInt(70_000))
	assert.Error(t, err)

	_, err = coerce(uint16Ty, big.NewInt(-1))
	assert.Error(t, err)

	v, err = coerce(uint96Ty, big.NewInt(500))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(500), v)

	v, err = coerce(int8Ty, big.NewInt(-100))
	require.NoError(t, err)
	assert.Equal(t, int8(-100), v)

	v, err = coerce(uint16Ty, "not a number")
	require.NoError(t, err)
	assert.Equal(t, "not a number", v)
}

func TestDeploymentCost(t *testing.T) {
	assert.Equal(t, big.NewInt(9_000_000_000_000_000), DeploymentCost(1_800_000, big.NewInt(5_000_000_000)))
	assert.Equal(t, 0, DeploymentCost(21_000, nil).Sign())
}

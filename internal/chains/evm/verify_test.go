package evm

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripMetadata(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		want []byte
	}{
		{
			name: "no metadata",
			code: []byte{0x60, 0x80, 0x60, 0x40},
			want: []byte{0x60, 0x80, 0x60, 0x40},
		},
		{
			name: "ipfs metadata",
			code: append([]byte{0x60, 0x80}, 0xa2, 0x64, 0x69, 0x70, 0x66, 0x73, 0x58, 0x22, 0x12),
			want: []byte{0x60, 0x80},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripMetadata(tt.code))
		})
	}
}

func TestCompareBytecode(t *testing.T) {
	meta := []byte{0xa2, 0x64, 0x69, 0x70, 0x66, 0x73}

	tests := []struct {
		name     string
		onchain  []byte
		artifact []byte
		want     MatchType
	}{
		{"exact", []byte{0x60, 0x80, 0x60, 0x40}, []byte{0x60, 0x80, 0x60, 0x40}, MatchFull},
		{"hex artifact", []byte{0x60, 0x80}, []byte("0x6080"), MatchFull},
		{"metadata differs", append([]byte{0x60, 0x80}, append(meta, 0x01)...), append([]byte{0x60, 0x80}, append(meta, 0x02)...), MatchPartial},
		{"different code", []byte{0x60, 0x80}, []byte{0x60, 0x81}, MatchNone},
		{"empty onchain", nil, []byte{0x60}, MatchNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareBytecode(tt.onchain, tt.artifact)
			assert.Equal(t, tt.want, got.Match)
			assert.Equal(t, tt.want != MatchNone, got.Matched())
			assert.NotEmpty(t, got.Message)
		})
	}
}

type codeReaderFunc func(ctx context.Context, account common.Address, block *big.Int) ([]byte, error)

func (f codeReaderFunc) CodeAt(ctx context.Context, account common.Address, block *big.Int) ([]byte, error) {
	return f(ctx, account, block)
}

func TestDeployedCode(t *testing.T) {
	addr := common.HexToAddress("0x1111111111111111111111111111111111111111")

	code, err := DeployedCode(context.Background(), codeReaderFunc(func(_ context.Context, a common.Address, block *big.Int) ([]byte, error) {
		assert.Equal(t, addr, a)
		assert.Nil(t, block)
		return []byte{0x00}, nil
	}), addr)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, code)

	boom := errors.New("boom")
	_, err = DeployedCode(context.Background(), codeReaderFunc(func(context.Context, common.Address, *big.Int) ([]byte, error) {
		return nil, boom
	}), addr)
	assert.ErrorIs(t, err, boom)
}

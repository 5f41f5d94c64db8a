// Package evm compares on-chain contract code with compiled artifacts.
package evm

import (
	"bytes"
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// MatchType describes how closely deployed code matches an artifact.
type MatchType string

const (
	MatchFull    MatchType = "full"
	MatchPartial MatchType = "partial"
	MatchNone    MatchType = "none"
)

// Comparison is the outcome of CompareBytecode.
type Comparison struct {
	Match   MatchType `json:"match"`
	Message string    `json:"message"`
}

// Matched reports whether the executable code is identical.
func (c Comparison) Matched() bool {
	return c.Match == MatchFull || c.Match == MatchPartial
}

// Solidity appends CBOR metadata starting with {"ipfs": ...}.
var metadataMarker = []byte{0xa2, 0x64, 0x69, 0x70, 0x66, 0x73}

// StripMetadata removes the trailing CBOR metadata section, if any.
func StripMetadata(code []byte) []byte {
	idx := bytes.LastIndex(code, metadataMarker)
	if idx < 0 {
		return code
	}
	return code[:idx]
}

// CompareBytecode compares runtime code read from the chain with the
// artifact's deployed bytecode. The artifact may be raw bytes or 0x-prefixed hex.
func CompareBytecode(onchain, artifact []byte) Comparison {
	if bytes.HasPrefix(artifact, []byte("0x")) {
		if decoded, err := hexutil.Decode(string(artifact)); err == nil {
			artifact = decoded
		}
	}

	switch {
	case len(onchain) == 0 || len(artifact) == 0:
		return Comparison{Match: MatchNone, Message: "no code to compare"}
	case bytes.Equal(onchain, artifact):
		return Comparison{Match: MatchFull, Message: "runtime code matches artifact including metadata"}
	case bytes.Equal(StripMetadata(onchain), StripMetadata(artifact)):
		return Comparison{Match: MatchPartial, Message: "runtime code matches artifact, metadata differs"}
	default:
		return Comparison{Match: MatchNone, Message: "runtime code does not match artifact"}
	}
}

// CodeReader reads contract code at the latest block. ethclient.Client
// satisfies it.
type CodeReader interface {
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
}

// DeployedCode fetches the runtime code at address.
func DeployedCode(ctx context.Context, r CodeReader, address common.Address) ([]byte, error) {
	code, err := r.CodeAt(ctx, address, nil)
	if err != nil {
		return nil, fmt.Errorf("eth_getCode %s: %w", address.Hex(), err)
	}
	return code, nil
}

// Package artifacts loads the compiled NFT collection contracts the deploy
// pipeline instantiates. Artifacts are opaque to this module: an ABI used to
// encode constructor arguments and creation bytecode.
package artifacts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	// ErrArtifactNotFound means the contract for a standard is not installed.
	ErrArtifactNotFound = errors.New("contract artifact not found")
	// ErrInvalidArtifact means the artifact exists but cannot be used.
	ErrInvalidArtifact = errors.New("invalid contract artifact")
	// ErrUnknownStandard is returned by ParseStandard.
	ErrUnknownStandard = errors.New("unknown token standard")
)

// Standard is an NFT token standard.
type Standard string

const (
	ERC721  Standard = "ERC721"
	ERC1155 Standard = "ERC1155"
)

// ParseStandard accepts "erc721", "ERC-721", "1155" and similar spellings.
func ParseStandard(s string) (Standard, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", ""))
	norm = strings.TrimPrefix(norm, "ERC")
	switch norm {
	case "721":
		return ERC721, nil
	case "1155":
		return ERC1155, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStandard, s)
}

// ContractName returns the artifact name the standard is published under.
func (s Standard) ContractName() string {
	switch s {
	case ERC721:
		return "NFTCollection721"
	case ERC1155:
		return "NFTCollection1155"
	}
	return ""
}

// Artifact is a compiled collection contract.
type Artifact struct {
	Standard         Standard
	ContractName     string
	ABI              abi.ABI
	RawABI           json.RawMessage
	Bytecode         []byte
	DeployedBytecode []byte
}

// Loader loads the artifact for a token standard.
type Loader interface {
	Load(ctx context.Context, std Standard) (*Artifact, error)
}

// artifactFile covers both Foundry ({"bytecode":{"object":"0x.."}}) and
// Hardhat ({"bytecode":"0x.."}) output.
type artifactFile struct {
	ContractName     string          `json:"contractName"`
	ABI              json.RawMessage `json:"abi"`
	Bytecode         json.RawMessage `json:"bytecode"`
	DeployedBytecode json.RawMessage `json:"deployedBytecode"`
}

// Parse decodes an artifact JSON document.
func Parse(std Standard, data []byte) (*Artifact, error) {
	var raw artifactFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parsing artifact JSON: %v", ErrInvalidArtifact, err)
	}

	code, err := decodeBytecode(raw.Bytecode)
	if err != nil {
		return nil, fmt.Errorf("%w: bytecode: %v", ErrInvalidArtifact, err)
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("%w: contract has no bytecode", ErrInvalidArtifact)
	}

	deployed, err := decodeBytecode(raw.DeployedBytecode)
	if err != nil {
		return nil, fmt.Errorf("%w: deployedBytecode: %v", ErrInvalidArtifact, err)
	}

	return build(std, raw.ContractName, raw.ABI, code, deployed)
}

func build(std Standard, name string, rawABI json.RawMessage, code, deployed []byte) (*Artifact, error) {
	if len(bytes.TrimSpace(rawABI)) == 0 {
		return nil, fmt.Errorf("%w: missing abi", ErrInvalidArtifact)
	}
	parsed, err := abi.JSON(bytes.NewReader(rawABI))
	if err != nil {
		return nil, fmt.Errorf("%w: abi: %v", ErrInvalidArtifact, err)
	}
	if name == "" {
		name = std.ContractName()
	}

	return &Artifact{
		Standard:         std,
		ContractName:     name,
		ABI:              parsed,
		RawABI:           rawABI,
		Bytecode:         code,
		DeployedBytecode: deployed,
	}, nil
}

func decodeBytecode(field json.RawMessage) ([]byte, error) {
	field = bytes.TrimSpace(field)
	if len(field) == 0 || bytes.Equal(field, []byte("null")) {
		return nil, nil
	}

	var hexStr string
	if field[0] == '"' {
		if err := json.Unmarshal(field, &hexStr); err != nil {
			return nil, err
		}
	} else {
		var obj struct {
			Object string `json:"object"`
		}
		if err := json.Unmarshal(field, &obj); err != nil {
			return nil, err
		}
		hexStr = obj.Object
	}

	return decodeHex(hexStr)
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0x" {
		return nil, nil
	}
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	return hexutil.Decode(s)
}

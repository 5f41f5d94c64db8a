package artifacts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pendergraft/mintfactory/pkg/client"
)

// RegistryClient is the subset of the API client used to fetch artifacts.
type RegistryClient interface {
	GetABI(ctx context.Context, name, version, contract string) (json.RawMessage, error)
	GetBytecode(ctx context.Context, name, version, contract string) ([]byte, error)
	GetDeployedBytecode(ctx context.Context, name, version, contract string) ([]byte, error)
}

// RegistryLoader fetches artifacts from a package registry.
type RegistryLoader struct {
	client  RegistryClient
	pkg     string
	version string
}

// NewRegistryLoader creates a loader reading contracts from pkg@version.
func NewRegistryLoader(c RegistryClient, pkg, version string) *RegistryLoader {
	return &RegistryLoader{client: c, pkg: pkg, version: version}
}

// Load fetches the ABI and bytecode for std. Missing deployed bytecode is
// tolerated since it is only used for informational comparison.
func (l *RegistryLoader) Load(ctx context.Context, std Standard) (*Artifact, error) {
	name := std.ContractName()
	if name == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStandard, std)
	}

	rawABI, err := l.client.GetABI(ctx, l.pkg, l.version, name)
	if err != nil {
		return nil, l.wrap(name, "abi", err)
	}

	rawCode, err := l.client.GetBytecode(ctx, l.pkg, l.version, name)
	if err != nil {
		return nil, l.wrap(name, "bytecode", err)
	}
	code, err := decodeHex(string(rawCode))
	if err != nil {
		return nil, fmt.Errorf("%w: bytecode: %v", ErrInvalidArtifact, err)
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("%w: contract has no bytecode", ErrInvalidArtifact)
	}

	var deployed []byte
	rawDeployed, err := l.client.GetDeployedBytecode(ctx, l.pkg, l.version, name)
	switch {
	case err == nil:
		if deployed, err = decodeHex(string(rawDeployed)); err != nil {
			return nil, fmt.Errorf("%w: deployedBytecode: %v", ErrInvalidArtifact, err)
		}
	case !client.IsNotFound(err):
		return nil, l.wrap(name, "deployed bytecode", err)
	}

	return build(std, name, rawABI, code, deployed)
}

func (l *RegistryLoader) wrap(name, what string, err error) error {
	if client.IsNotFound(err) {
		return fmt.Errorf("%w: %s@%s/%s", ErrArtifactNotFound, l.pkg, l.version, name)
	}
	return fmt.Errorf("fetching %s for %s: %w", what, name, err)
}

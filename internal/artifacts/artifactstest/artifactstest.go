// Package artifactstest bundles minimal collection artifacts for tests.
//
// The creation code deploys a one-byte runtime (STOP), so any call to the
// deployed contract succeeds and eth_getCode returns non-empty code.
package artifactstest

import (
	"context"
	"embed"
	"io/fs"

	"github.com/pendergraft/mintfactory/internal/artifacts"
)

//go:embed testdata/*.json
var bundle embed.FS

const (
	// CreationCode is the creation bytecode of every bundled artifact.
	CreationCode = "0x6001600c60003960016000f300"
	// EmptyRuntimeCode deploys successfully but leaves no code behind.
	EmptyRuntimeCode = "0x60006000f3"
	// RevertingCode reverts during construction.
	RevertingCode = "0x60006000fd"
)

// FS returns the bundled artifact files.
func FS() fs.FS {
	sub, err := fs.Sub(bundle, "testdata")
	if err != nil {
		panic(err)
	}
	return sub
}

// Loader returns an artifacts loader over the bundle.
func Loader() *artifacts.FSLoader {
	return artifacts.NewFSLoader(FS())
}

// WithBytecode returns a loader whose artifacts carry code instead of the
// bundled creation code.
func WithBytecode(code []byte) artifacts.Loader {
	return &overrideLoader{code: code}
}

type overrideLoader struct {
	code []byte
}

func (l *overrideLoader) Load(ctx context.Context, std artifacts.Standard) (*artifacts.Artifact, error) {
	a, err := Loader().Load(ctx, std)
	if err != nil {
		return nil, err
	}
	a.Bytecode = l.code
	a.DeployedBytecode = nil
	return a, nil
}

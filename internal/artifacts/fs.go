package artifacts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// FSLoader reads <ContractName>.json files from a filesystem.
type FSLoader struct {
	fsys fs.FS
}

// NewFSLoader creates a loader over fsys, e.g. an embed.FS bundle.
func NewFSLoader(fsys fs.FS) *FSLoader {
	return &FSLoader{fsys: fsys}
}

// NewDirLoader creates a loader over a directory of compiler output.
func NewDirLoader(dir string) *FSLoader {
	return NewFSLoader(os.DirFS(dir))
}

// Load reads and parses the artifact for std.
func (l *FSLoader) Load(ctx context.Context, std Standard) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := std.ContractName()
	if name == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStandard, std)
	}

	data, err := fs.ReadFile(l.fsys, name+".json")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, name)
		}
		return nil, fmt.Errorf("reading artifact %s: %w", name, err)
	}

	return Parse(std, data)
}

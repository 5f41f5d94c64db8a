package artifacts

import (
	"context"
	"sync"
)

// CachedLoader memoizes successful loads. Failures are not cached so a
// missing artifact can be installed without a restart.
type CachedLoader struct {
	next Loader

	mu    sync.Mutex
	cache map[Standard]*Artifact
}

// NewCachedLoader wraps next with a per-standard cache.
func NewCachedLoader(next Loader) *CachedLoader {
	return &CachedLoader{next: next, cache: make(map[Standard]*Artifact)}
}

// Load returns the cached artifact or loads it from the wrapped loader.
func (l *CachedLoader) Load(ctx context.Context, std Standard) (*Artifact, error) {
	l.mu.Lock()
	a, ok := l.cache[std]
	l.mu.Unlock()
	if ok {
		return a, nil
	}

	a, err := l.next.Load(ctx, std)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache[std] = a
	l.mu.Unlock()
	return a, nil
}

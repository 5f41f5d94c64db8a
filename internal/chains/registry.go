// Package chains provides the registry of EVM networks a collection can be
// deployed to, keyed by the free-text aliases users type into the deploy form.
//
// Unknown aliases do not fail resolution: ResolveOrDefault falls back to
// DefaultChainID (BSC Testnet), the low-fee chain deployments have
// historically been tested on. Callers that need typos to fail loudly should
// use Resolve and treat the miss themselves.
package chains

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultChainID is applied when an alias is not registered.
const DefaultChainID int64 = 97

// ChainDescriptor describes one EVM network.
type ChainDescriptor struct {
	ChainID      int64    `json:"chainId"`
	DisplayName  string   `json:"displayName"`
	Aliases      []string `json:"aliases"`
	NativeSymbol string   `json:"nativeSymbol"`
	Testnet      bool     `json:"testnet"`
}

// Registry maps case-insensitive aliases to chain descriptors.
// A Registry is immutable once built.
type Registry struct {
	byAlias   map[string]int64
	byID      map[int64]ChainDescriptor
	defaultID int64
}

// NewRegistry builds a registry from the given descriptors. The default chain
// must be one of them. It panics on a duplicate alias or chain ID, since that
// can only come from a bad static table.
func NewRegistry(defaultID int64, descs ...ChainDescriptor) *Registry {
	r := &Registry{
		byAlias:   make(map[string]int64),
		byID:      make(map[int64]ChainDescriptor, len(descs)),
		defaultID: defaultID,
	}

	for _, d := range descs {
		if _, dup := r.byID[d.ChainID]; dup {
			panic(fmt.Sprintf("chains: duplicate chain id %d", d.ChainID))
		}
		r.byID[d.ChainID] = d
		for _, alias := range d.Aliases {
			key := normalize(alias)
			if other, dup := r.byAlias[key]; dup {
				panic(fmt.Sprintf("chains: alias %q registered for both %d and %d", alias, other, d.ChainID))
			}
			r.byAlias[key] = d.ChainID
		}
	}

	if _, ok := r.byID[defaultID]; !ok {
		panic(fmt.Sprintf("chains: default chain %d is not registered", defaultID))
	}

	return r
}

// Resolve looks up a chain by alias. Lookup is case-insensitive and ignores
// surrounding whitespace.
func (r *Registry) Resolve(alias string) (ChainDescriptor, bool) {
	id, ok := r.byAlias[normalize(alias)]
	if !ok {
		return ChainDescriptor{}, false
	}
	return r.byID[id], true
}

// ResolveOrDefault resolves alias, falling back to the default chain when it
// is unknown. The returned bool is true when the default was applied.
func (r *Registry) ResolveOrDefault(alias string) (ChainDescriptor, bool) {
	if d, ok := r.Resolve(alias); ok {
		return d, false
	}
	return r.byID[r.defaultID], true
}

// Lookup returns the descriptor for a chain ID.
func (r *Registry) Lookup(chainID int64) (ChainDescriptor, bool) {
	d, ok := r.byID[chainID]
	return d, ok
}

// Default returns the descriptor applied to unknown aliases.
func (r *Registry) Default() ChainDescriptor {
	return r.byID[r.defaultID]
}

// List returns all registered chains ordered by chain ID.
func (r *Registry) List() []ChainDescriptor {
	out := make([]ChainDescriptor, 0, len(r.byID))
	for _, d := range r.byID {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChainID < out[j].ChainID })
	return out
}

// DisplayName returns the chain's display name, or a generic label for
// chains the registry does not know.
func (r *Registry) DisplayName(chainID int64) string {
	if d, ok := r.byID[chainID]; ok {
		return d.DisplayName
	}
	return fmt.Sprintf("chain %d", chainID)
}

func normalize(alias string) string {
	return strings.ToUpper(strings.TrimSpace(alias))
}

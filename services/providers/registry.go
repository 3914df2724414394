package providers

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyProviderID is returned when a configured provider id is blank
	ErrEmptyProviderID = errors.New("provider id cannot be empty")

	// ErrProviderAlreadyRegistered is returned when the same id is configured twice
	ErrProviderAlreadyRegistered = errors.New("provider already registered")
)

// ProviderSpec describes one configured model in the fallback chain
type ProviderSpec struct {
	// ID is the gateway model id, e.g. "anthropic/claude-3-haiku"
	ID string `json:"id"`

	// DisplayName is the model part of the id
	DisplayName string `json:"name"`

	// SourceNamespace is the vendor part of the id
	SourceNamespace string `json:"provider"`

	// PriorityRank starts at 1 for the primary model
	PriorityRank int `json:"priority"`
}

// NewProviderSpec derives display name and namespace from a "namespace/model" id
func NewProviderSpec(id string, rank int) ProviderSpec {
	namespace, name, _ := strings.Cut(id, "/")
	if namespace == "" {
		namespace = "unknown"
	}
	if name == "" {
		name = id
	}
	return ProviderSpec{
		ID:              id,
		DisplayName:     name,
		SourceNamespace: namespace,
		PriorityRank:    rank,
	}
}

// Registry is the ordered, immutable list of providers to try.
// It is safe for concurrent use without locking since it never changes after construction.
type Registry struct {
	providers []ProviderSpec
}

// NewRegistry builds a registry ranked in declaration order
func NewRegistry(ids []string) (*Registry, error) {
	specs := make([]ProviderSpec, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))

	for i, raw := range ids {
		id := strings.TrimSpace(raw)
		if id == "" {
			return nil, fmt.Errorf("provider at position %d: %w", i+1, ErrEmptyProviderID)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%s: %w", id, ErrProviderAlreadyRegistered)
		}
		seen[id] = struct{}{}
		specs = append(specs, NewProviderSpec(id, len(specs)+1))
	}

	return &Registry{providers: specs}, nil
}

// Providers returns a copy of the providers in ascending priority order
func (r *Registry) Providers() []ProviderSpec {
	if r == nil {
		return nil
	}
	out := make([]ProviderSpec, len(r.providers))
	copy(out, r.providers)
	return out
}

// Len returns the number of configured providers
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.providers)
}

// Primary returns the rank 1 provider
func (r *Registry) Primary() (ProviderSpec, bool) {
	if r.Len() == 0 {
		return ProviderSpec{}, false
	}
	return r.providers[0], true
}

// Lookup finds a provider by id
func (r *Registry) Lookup(id string) (ProviderSpec, bool) {
	if r == nil {
		return ProviderSpec{}, false
	}
	for _, p := range r.providers {
		if p.ID == id {
			return p, true
		}
	}
	return ProviderSpec{}, false
}

// IDs returns the provider ids in priority order
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	ids := make([]string, len(r.providers))
	for i, p := range r.providers {
		ids[i] = p.ID
	}
	return ids
}

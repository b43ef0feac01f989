package model

import (
	"context"
	"fmt"
	"sort"
)

// Kind tags which table a generic (kind, id) reference points at.
// Kinds are registered once at startup; an unregistered kind can never
// be resolved.
type Kind string

const KindUser Kind = "user"

// Referent is an object a generic reference resolved to.
type Referent interface {
	ReferenceKind() Kind
	// DisplayName is the short human form used when synthesizing
	// notification text.
	DisplayName() string
}

// Resolver fetches the referents for a batch of ids of one kind in a
// single round trip. Missing ids are simply absent from the result map.
type Resolver func(ctx context.Context, ids []uint64) (map[uint64]Referent, error)

type kindEntry struct {
	verbose string
	resolve Resolver
}

// ResolverRegistry maps each referenceable kind to its verbose name and
// batch resolver. It replaces open-ended runtime type dispatch with a
// closed set fixed during process setup.
type ResolverRegistry struct {
	kinds map[Kind]kindEntry
}

func NewResolverRegistry() *ResolverRegistry {
	return &ResolverRegistry{kinds: make(map[Kind]kindEntry)}
}

// Register adds a kind. Registering the same kind twice or a nil
// resolver is a programming error.
func (r *ResolverRegistry) Register(kind Kind, verbose string, resolve Resolver) error {
	if kind == "" || resolve == nil {
		return fmt.Errorf("register kind %q: kind and resolver are required", kind)
	}
	if _, ok := r.kinds[kind]; ok {
		return fmt.Errorf("kind %q already registered", kind)
	}
	r.kinds[kind] = kindEntry{verbose: verbose, resolve: resolve}
	return nil
}

func (r *ResolverRegistry) Known(kind Kind) bool {
	_, ok := r.kinds[kind]
	return ok
}

// Verbose returns the descriptive name for a kind ("user", "item", ...).
func (r *ResolverRegistry) Verbose(kind Kind) (string, error) {
	e, ok := r.kinds[kind]
	if !ok {
		return "", fmt.Errorf("kind %q not registered", kind)
	}
	return e.verbose, nil
}

// ResolveOne resolves a single (kind, id) pair.
func (r *ResolverRegistry) ResolveOne(ctx context.Context, kind Kind, id uint64) (Referent, error) {
	e, ok := r.kinds[kind]
	if !ok {
		return nil, fmt.Errorf("kind %q not registered", kind)
	}
	m, err := e.resolve(ctx, []uint64{id})
	if err != nil {
		return nil, err
	}
	obj, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("%s %d not found", kind, id)
	}
	return obj, nil
}

// Ref is one generic reference to resolve.
type Ref struct {
	Kind Kind
	ID   uint64
}

// ResolveAll resolves refs in input order using one resolver call per
// distinct kind, so the round-trip count is bounded by the number of
// kinds, not the number of refs. Refs that resolve to nothing are
// dropped from the result.
func (r *ResolverRegistry) ResolveAll(ctx context.Context, refs []Ref) ([]Referent, error) {
	byKind := make(map[Kind][]uint64)
	for _, ref := range refs {
		if !r.Known(ref.Kind) {
			return nil, fmt.Errorf("kind %q not registered", ref.Kind)
		}
		byKind[ref.Kind] = append(byKind[ref.Kind], ref.ID)
	}

	resolved := make(map[Ref]Referent, len(refs))
	kinds := make([]Kind, 0, len(byKind))
	for k := range byKind {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, kind := range kinds {
		m, err := r.kinds[kind].resolve(ctx, byKind[kind])
		if err != nil {
			return nil, fmt.Errorf("resolve %s refs: %w", kind, err)
		}
		for id, obj := range m {
			resolved[Ref{Kind: kind, ID: id}] = obj
		}
	}

	out := make([]Referent, 0, len(refs))
	for _, ref := range refs {
		if obj, ok := resolved[ref]; ok {
			out = append(out, obj)
		}
	}
	return out, nil
}

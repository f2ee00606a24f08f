package geo

import (
	"context"
	"sync"
)

// Fetcher loads a boundary set.
type Fetcher interface {
	FetchBoundaries(ctx context.Context) (*Boundaries, error)
}

// Resolver fetches boundaries once per process and serves the memoized set.
// A failed fetch is not remembered, so the next call tries again.
type Resolver struct {
	fetcher    Fetcher
	mu         sync.Mutex
	boundaries *Boundaries
}

func NewResolver(fetcher Fetcher) *Resolver {
	return &Resolver{fetcher: fetcher}
}

func (r *Resolver) Boundaries(ctx context.Context) (*Boundaries, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.boundaries != nil {
		return r.boundaries, nil
	}
	boundaries, err := r.fetcher.FetchBoundaries(ctx)
	if err != nil {
		return nil, err
	}
	r.boundaries = boundaries
	return boundaries, nil
}

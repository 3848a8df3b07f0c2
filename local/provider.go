// Package local provides a breed lookup backed by a fixed in-process table.
// It needs no network and is useful for demos and tests.
package local

import (
	"context"

	breedcache "github.com/ericselin/breedcache"
)

type Provider struct {
	breeds map[string][]string
}

// New creates a provider for the given breeds.
// Breed names are normalized, so lookups ignore case and surrounding whitespace.
func New(breeds map[string][]string) *Provider {
	p := &Provider{breeds: make(map[string][]string, len(breeds))}
	for name, subBreeds := range breeds {
		p.breeds[breedcache.NormalizeKey(name)] = append([]string{}, subBreeds...)
	}
	return p
}

// Default knows only the hound.
func Default() *Provider {
	return New(map[string][]string{
		"hound": {"afghan", "basset", "blood", "english", "ibizan", "plott", "walker"},
	})
}

// SubBreeds implements breedcache.Provider.
func (p *Provider) SubBreeds(_ context.Context, breed string) ([]string, error) {
	subBreeds, ok := p.breeds[breedcache.NormalizeKey(breed)]
	if !ok {
		return nil, breedcache.NewNotFoundError(breed, nil)
	}
	return append([]string{}, subBreeds...), nil
}

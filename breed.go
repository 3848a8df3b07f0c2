package breedcache

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound matches every NotFoundError with errors.Is.
var ErrNotFound = errors.New("breed not found")

// Provider looks up the sub-breeds of a breed.
// The result may be empty if the breed has no sub-breeds.
// Unknown or blank breeds, as well as any failure of the underlying lookup
// mechanism, are reported as a *NotFoundError.
type Provider interface {
	SubBreeds(ctx context.Context, breed string) ([]string, error)
}

// ProviderFunc adapts an ordinary function to the Provider interface.
type ProviderFunc func(ctx context.Context, breed string) ([]string, error)

func (f ProviderFunc) SubBreeds(ctx context.Context, breed string) ([]string, error) {
	return f(ctx, breed)
}

// NotFoundError is returned when the sub-breeds of a breed cannot be determined.
type NotFoundError struct {
	// Breed as given by the caller, not normalized.
	Breed string
	// Err is the underlying cause, if any.
	Err error
}

func NewNotFoundError(breed string, cause error) *NotFoundError {
	return &NotFoundError{Breed: breed, Err: cause}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("breed not found: %s", e.Breed)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// CountSubBreeds returns the number of sub-breeds of the given breed.
// Lookup failures count as zero sub-breeds and are not returned.
func CountSubBreeds(ctx context.Context, breed string, provider Provider) int {
	subBreeds, err := provider.SubBreeds(ctx, breed)
	if err != nil {
		if !IsNotFound(err) {
			loggerFrom(ctx).Warn().Err(err).Str("breed", breed).Msg("Could not look up sub-breeds")
		}
		return 0
	}
	return len(subBreeds)
}

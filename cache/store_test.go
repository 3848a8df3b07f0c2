package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	sqlite, err := NewSQLiteStore()
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Store{
		"memory": NewMemStore(),
		"sqlite": sqlite,
	}
}

func TestStoreMissing(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			got, ok, err := s.Get("hound")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Nil(t, got)
		})
	}
}

func TestStoreKeepsOrder(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put("hound", []string{"walker", "afghan", "basset"}))

			got, ok, err := s.Get("hound")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, []string{"walker", "afghan", "basset"}, got)
		})
	}
}

func TestStoreEmptyValue(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put("pug", nil))

			got, ok, err := s.Get("pug")
			require.NoError(t, err)
			require.True(t, ok)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestStoreCopiesValues(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			in := []string{"afghan", "basset"}
			require.NoError(t, s.Put("hound", in))
			in[0] = "mutated"

			got, _, err := s.Get("hound")
			require.NoError(t, err)
			got[1] = "mutated"

			again, _, err := s.Get("hound")
			require.NoError(t, err)
			assert.Equal(t, []string{"afghan", "basset"}, again)
		})
	}
}

func TestStoreAllKeys(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put("terrier", []string{"irish"}))
			require.NoError(t, s.Put("hound", []string{"afghan"}))
			require.NoError(t, s.Put("hound", []string{"basset"}))

			var keys []string
			require.NoError(t, s.AllKeys(func(key string) {
				keys = append(keys, key)
			}))
			assert.Equal(t, []string{"hound", "terrier"}, keys)

			got, _, err := s.Get("hound")
			require.NoError(t, err)
			assert.Equal(t, []string{"basset"}, got)
		})
	}
}

package uuid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNanoIDGenerator(t *testing.T) {
	gen := NewNanoIDGenerator(24)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := gen.Generate()
		require.NoError(t, err)
		assert.Len(t, id, 24)
		assert.False(t, seen[id], "duplicated id %s", id)
		seen[id] = true
	}
}

func TestNanoIDGenerator_Alphabet(t *testing.T) {
	gen := &NanoIDGenerator{Length: 12, Alphabet: "abc123"}
	id, err := gen.Generate()
	require.NoError(t, err)
	assert.Len(t, id, 12)
	assert.Empty(t, strings.Trim(id, "abc123"))
}

func TestNewNanoIDGenerator_InvalidLength(t *testing.T) {
	assert.Panics(t, func() { NewNanoIDGenerator(0) })
}

func TestSequenceGenerator(t *testing.T) {
	gen := &SequenceGenerator{IDs: []string{"a", "b"}}
	for _, want := range []string{"a", "b"} {
		id, err := gen.Generate()
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
	_, err := gen.Generate()
	assert.Error(t, err)
}

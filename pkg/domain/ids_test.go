package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "personpatch/pkg/domain-errors"
)

// TestParsePersonID_Invariants validates the parsing invariant:
// "IDs are opaque, non-blank and free of control characters". Ids outside
// that shape cannot exist, so they are reported as not found.
func TestParsePersonID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParsePersonID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("rejects whitespace only", func(t *testing.T) {
		_, err := ParsePersonID("   ")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("accepts UUIDs", func(t *testing.T) {
		raw := uuid.NewString()
		id, err := ParsePersonID(raw)
		require.NoError(t, err)
		assert.Equal(t, PersonID(raw), id)
	})

	t.Run("accepts non-UUID opaque ids", func(t *testing.T) {
		id, err := ParsePersonID("1")
		require.NoError(t, err)
		assert.Equal(t, "1", id.String())
	})
}

func TestParsePersonID_SecurityInvariants(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"null byte", "abc\x00def"},
		{"newline", "abc\ndef"},
		{"delete char", "abc\x7f"},
		{"oversized", strings.Repeat("a", maxIDLength+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePersonID(tt.input)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
		})
	}
}

func TestNewPersonID(t *testing.T) {
	a, b := NewPersonID(), NewPersonID()
	assert.NotEqual(t, a, b)
	assert.False(t, a.IsNil())

	_, err := uuid.Parse(a.String())
	assert.NoError(t, err)
}

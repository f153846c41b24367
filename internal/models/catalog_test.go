package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name   string
		wantID string
		found  bool
	}{
		{"qwen3-coder-plus", "qwen3-coder-plus", true},
		{"coder", "qwen3-coder-plus", true},
		{"coder-plus", "qwen3-coder-plus", true},
		{"flash", "qwen3-coder-flash", true},
		{"max", "qwen3-max", true},
		{"vl", "qwen3-vl-plus", true},
		{"  Coder  ", "qwen3-coder-plus", true},
		{"gpt-4", "", false},
	}

	for _, tt := range tests {
		info, ok := Lookup(tt.name)
		require.Equal(t, tt.found, ok, "Lookup(%q)", tt.name)

		if tt.found {
			assert.Equal(t, tt.wantID, info.ID)
		}
	}
}

func TestResolve(t *testing.T) {
	id, err := Resolve("flash")
	require.NoError(t, err)
	assert.Equal(t, "qwen3-coder-flash", id)

	// Unknown names pass through for forward compatibility.
	id, err = Resolve("qwen4-preview")
	require.NoError(t, err)
	assert.Equal(t, "qwen4-preview", id)

	_, err = Resolve("  ")
	require.Error(t, err)
}

func TestVisionSupport(t *testing.T) {
	info, ok := Lookup("vision")
	require.True(t, ok)
	assert.True(t, info.SupportsVision)

	info, ok = Lookup("coder")
	require.True(t, ok)
	assert.False(t, info.SupportsVision)
}

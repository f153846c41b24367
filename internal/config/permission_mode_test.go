package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizePermissionMode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "default", want: "default"},
		{in: "plan", want: "plan"},
		{in: "auto-edit", want: "auto-edit"},
		{in: "yolo", want: "yolo"},
		{in: "acceptEdits", want: "auto-edit"},
		{in: "acceptAll", want: "yolo"},
		{in: "bypassPermissions", want: "yolo"},
		{in: "prompt", want: "default"},
		{in: "", want: ""},
		{in: "bogus", want: "bogus"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, NormalizePermissionMode(tt.in), "mode %q", tt.in)
	}
}

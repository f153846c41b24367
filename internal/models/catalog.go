// Package models holds the known Qwen model catalog and alias resolution
// used by model switching.
package models

import (
	"fmt"
	"strings"
)

// Info describes a known model.
type Info struct {
	// ID is the canonical model identifier passed to the CLI.
	ID string

	// Aliases are short names accepted in place of the full ID.
	Aliases []string

	// SupportsVision reports whether the model accepts image input.
	SupportsVision bool
}

// catalog lists the models the coder CLI is known to serve. Unknown IDs
// are still passed through to the CLI, which performs its own validation.
var catalog = []Info{
	{
		ID:      "qwen3-coder-plus",
		Aliases: []string{"coder", "coder-plus"},
	},
	{
		ID:      "qwen3-coder-flash",
		Aliases: []string{"flash", "coder-flash"},
	},
	{
		ID:      "qwen3-max",
		Aliases: []string{"max"},
	},
	{
		ID:             "qwen3-vl-plus",
		Aliases:        []string{"vl", "vision"},
		SupportsVision: true,
	},
}

// Default is the model used when none is configured.
const Default = "qwen3-coder-plus"

// Known returns the catalog entries.
func Known() []Info {
	result := make([]Info, len(catalog))
	copy(result, catalog)

	return result
}

// Lookup finds a catalog entry by canonical ID or alias.
func Lookup(name string) (Info, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))

	for _, info := range catalog {
		if info.ID == needle {
			return info, true
		}

		for _, alias := range info.Aliases {
			if alias == needle {
				return info, true
			}
		}
	}

	return Info{}, false
}

// Resolve maps a model name or alias to its canonical ID.
//
// Names outside the catalog are returned unchanged so newer models work
// without an SDK update. An empty name is an error.
func Resolve(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("model name is empty")
	}

	if info, ok := Lookup(trimmed); ok {
		return info.ID, nil
	}

	return trimmed, nil
}

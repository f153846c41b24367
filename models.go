package qwensdk

import "github.com/qwenlm/qwen-agent-sdk-go/internal/models"

// DefaultModel is the model used when none is configured.
const DefaultModel = models.Default

// KnownModels returns the catalog of models the SDK knows about.
// The CLI may serve models outside this list; unknown names are passed
// through unchanged.
func KnownModels() []ModelInfo {
	return models.Known()
}

// ResolveModel maps a model name or alias ("coder", "flash", "max", "vl")
// to its canonical ID. Unknown names are returned unchanged.
func ResolveModel(name string) (string, error) {
	return models.Resolve(name)
}

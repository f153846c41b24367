package qwensdk

import (
	"iter"

	"github.com/qwenlm/qwen-agent-sdk-go/internal/message"
)

// PromptsFromSlice creates a prompt stream from a fixed slice.
func PromptsFromSlice(prompts []PromptMessage) iter.Seq[PromptMessage] {
	return func(yield func(PromptMessage) bool) {
		for _, prompt := range prompts {
			if !yield(prompt) {
				return
			}
		}
	}
}

// PromptsFromChannel creates a prompt stream from a channel.
// Useful when prompts are produced over time, for example from user input.
// The stream completes when the channel is closed.
func PromptsFromChannel(ch <-chan PromptMessage) iter.Seq[PromptMessage] {
	return func(yield func(PromptMessage) bool) {
		for prompt := range ch {
			if !yield(prompt) {
				return
			}
		}
	}
}

// SinglePrompt creates a prompt stream holding one user message.
func SinglePrompt(content string) iter.Seq[PromptMessage] {
	return PromptsFromSlice([]PromptMessage{NewPrompt(content)})
}

// NewPrompt creates a PromptMessage with type "user".
func NewPrompt(content string) PromptMessage {
	return message.NewPrompt(content)
}

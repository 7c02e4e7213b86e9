// Package provider builds the Anthropic client used by the agent.
package provider

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// NewAnthropicClient returns a client for apiKey. An empty key falls back to
// ANTHROPIC_API_KEY from the environment, which the SDK reads itself.
func NewAnthropicClient(apiKey string, opts ...option.RequestOption) *anthropic.Client {
	if apiKey != "" {
		opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	}
	c := anthropic.NewClient(opts...)
	return &c
}

const DefaultModel = anthropic.ModelClaudeSonnet4_5

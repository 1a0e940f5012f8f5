package ai

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// FallbackChain is an ordered list of named providers implementing one
// capability. Calling the chain tries the first provider; on any error it
// logs a warning and tries the next; when the list is exhausted the last
// error propagates. The chain is assembled once at process startup.
type FallbackChain[P any] struct {
	capability string
	entries    []chainEntry[P]
	logger     *zap.Logger
}

type chainEntry[P any] struct {
	name     string
	provider P
}

// NewFallbackChain creates an empty chain for the named capability.
func NewFallbackChain[P any](capability string, logger *zap.Logger) *FallbackChain[P] {
	return &FallbackChain[P]{capability: capability, logger: logger}
}

// Add appends a named provider to the chain and returns the chain for
// call chaining.
func (c *FallbackChain[P]) Add(name string, provider P) *FallbackChain[P] {
	c.entries = append(c.entries, chainEntry[P]{name: name, provider: provider})
	return c
}

// Len returns the number of registered providers.
func (c *FallbackChain[P]) Len() int {
	return len(c.entries)
}

// Names returns the provider names in call order.
func (c *FallbackChain[P]) Names() []string {
	names := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		names = append(names, e.name)
	}
	return names
}

// Execute runs call against each provider in chain order until one
// succeeds, returning the result and the name of the provider that
// served it. The last provider's error propagates when all fail.
func Execute[P any, R any](ctx context.Context, c *FallbackChain[P], call func(context.Context, P) (R, error)) (R, string, error) {
	var (
		zero    R
		lastErr error
	)

	if len(c.entries) == 0 {
		return zero, "", fmt.Errorf("%s: no providers configured", c.capability)
	}

	for _, entry := range c.entries {
		result, err := call(ctx, entry.provider)
		if err == nil {
			return result, entry.name, nil
		}
		lastErr = err

		if c.logger != nil {
			c.logger.Warn("provider failed, trying next",
				zap.String("capability", c.capability),
				zap.String("provider", entry.name),
				zap.Error(err),
			)
		}
	}

	return zero, "", fmt.Errorf("%s: all providers failed: %w", c.capability, lastErr)
}

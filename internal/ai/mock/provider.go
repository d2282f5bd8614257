// Package mock provides AIProvider test doubles.
package mock

import (
	"context"
	"errors"

	"github.com/arjunks/datahound/pkg/models"
)

// Provider is a configurable test double. When CompleteFunc is nil it
// returns Reply unchanged.
type Provider struct {
	Reply        string
	CompleteFunc func(ctx context.Context, req models.CompletionRequest) (string, error)
	Calls        int
}

// NewMockProvider returns a provider that answers every completion with a
// minimal well-formed reply.
func NewMockProvider() *Provider {
	return &Provider{Reply: `{"categories": [], "analysis": "mock analysis"}`}
}

// NewFailingProvider returns a provider whose completions always fail.
func NewFailingProvider(msg string) *Provider {
	return &Provider{
		CompleteFunc: func(ctx context.Context, req models.CompletionRequest) (string, error) {
			return "", errors.New(msg)
		},
	}
}

// NewTimeoutProvider returns a provider that blocks until the context
// expires, then surfaces the context error.
func NewTimeoutProvider() *Provider {
	return &Provider{
		CompleteFunc: func(ctx context.Context, req models.CompletionRequest) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
}

func (p *Provider) Name() string { return "mock" }

func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	p.Calls++
	if p.CompleteFunc != nil {
		return p.CompleteFunc(ctx, req)
	}
	return p.Reply, nil
}

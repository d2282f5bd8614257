package ai

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/arjunks/datahound/internal/ai/mock"
	"github.com/arjunks/datahound/internal/config"
	"github.com/arjunks/datahound/pkg/models"
)

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}
func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}
func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}
func (c *memoryCache) Ping(_ context.Context) error { return nil }
func (c *memoryCache) SetJobStatus(_ context.Context, _ uuid.UUID, _ string, _ time.Duration) error {
	return nil
}
func (c *memoryCache) GetJobStatus(_ context.Context, _ uuid.UUID) (string, bool, error) {
	return "", false, nil
}
func (c *memoryCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 0, nil
}

func serviceConfig() config.AIConfig {
	return config.AIConfig{
		Provider:         "ollama",
		InferenceTimeout: 5 * time.Second,
		Temperature:      0.2,
		MaxTokens:        1024,
		SampleRows:       20,
		ReplyCacheTTL:    time.Hour,
	}
}

func TestEnrich_NilProvider(t *testing.T) {
	svc := NewService(nil, newMemoryCache(), nil, serviceConfig())
	_, err := svc.Enrich(context.Background(), enrichFixture())
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestEnrich_Success(t *testing.T) {
	provider := mock.NewMockProvider()
	svc := NewService(provider, newMemoryCache(), nil, serviceConfig())

	result, err := svc.Enrich(context.Background(), enrichFixture())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Source != models.SourceModel {
		t.Errorf("source = %s, want model", result.Source)
	}
	if result.Analysis != "mock analysis" {
		t.Errorf("analysis = %q, want the mock narrative", result.Analysis)
	}
	if len(result.Categories) != 5 {
		t.Errorf("expected all 5 categories reconstructed, got %d", len(result.Categories))
	}
}

func TestEnrich_ProviderError(t *testing.T) {
	provider := mock.NewFailingProvider("connection refused")
	svc := NewService(provider, newMemoryCache(), nil, serviceConfig())

	_, err := svc.Enrich(context.Background(), enrichFixture())
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestEnrich_Timeout(t *testing.T) {
	provider := mock.NewTimeoutProvider()
	cfg := serviceConfig()
	cfg.InferenceTimeout = 20 * time.Millisecond
	svc := NewService(provider, newMemoryCache(), nil, cfg)

	_, err := svc.Enrich(context.Background(), enrichFixture())
	if !errors.Is(err, ErrInferenceTimeout) {
		t.Fatalf("expected ErrInferenceTimeout, got %v", err)
	}
}

func TestEnrich_InvalidReply(t *testing.T) {
	provider := &mock.Provider{Reply: "I am unable to answer in JSON today."}
	svc := NewService(provider, newMemoryCache(), nil, serviceConfig())

	_, err := svc.Enrich(context.Background(), enrichFixture())
	if !errors.Is(err, ErrInvalidReply) {
		t.Fatalf("expected ErrInvalidReply, got %v", err)
	}
}

func TestEnrich_ReplyCacheAvoidsRepeatInference(t *testing.T) {
	provider := mock.NewMockProvider()
	svc := NewService(provider, newMemoryCache(), nil, serviceConfig())

	req := enrichFixture()
	if _, err := svc.Enrich(context.Background(), req); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := svc.Enrich(context.Background(), req); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if provider.Calls != 1 {
		t.Errorf("provider calls = %d, want 1 (second served from cache)", provider.Calls)
	}
}

func TestEnrich_NilCacheStillWorks(t *testing.T) {
	provider := mock.NewMockProvider()
	svc := NewService(provider, nil, nil, serviceConfig())

	if _, err := svc.Enrich(context.Background(), enrichFixture()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Enrich(context.Background(), enrichFixture()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.Calls != 2 {
		t.Errorf("provider calls = %d, want 2 without a cache", provider.Calls)
	}
}

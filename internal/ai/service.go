package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arjunks/datahound/internal/cache"
	"github.com/arjunks/datahound/internal/config"
	"github.com/arjunks/datahound/internal/profile"
	"github.com/arjunks/datahound/pkg/models"
)

// Service turns a configured provider into a profile.Enricher: it builds
// the prompt, runs the completion under the inference timeout, reconciles
// the reply against the deterministic ground truth and caches replies in
// Redis so identical partitions do not pay for repeat inference.
type Service struct {
	provider    models.AIProvider
	cache       cache.Cache
	logger      *slog.Logger
	timeout     time.Duration
	temperature float64
	maxTokens   int
	thinking    bool
	sampleRows  int
	replyTTL    time.Duration
}

// NewService wires a provider into the enrichment service. The cache is
// optional; a nil cache disables reply caching.
func NewService(provider models.AIProvider, c cache.Cache, logger *slog.Logger, cfg config.AIConfig) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		provider:    provider,
		cache:       c,
		logger:      logger,
		timeout:     cfg.InferenceTimeout,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		thinking:    cfg.Thinking,
		sampleRows:  cfg.SampleRows,
		replyTTL:    cfg.ReplyCacheTTL,
	}
}

// Enrich implements profile.Enricher. The caller absorbs errors: anything
// returned here downgrades that partition to its deterministic result.
func (s *Service) Enrich(ctx context.Context, req profile.EnrichRequest) (*models.ProfileResult, error) {
	if s.provider == nil {
		return nil, ErrProviderUnavailable
	}

	messages, err := BuildPrompt(req, s.sampleRows)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	raw, cached, err := s.complete(ctx, messages)
	if err != nil {
		return nil, err
	}

	result, err := Reconcile(raw, req)
	if err != nil {
		if cached {
			// A cached reply that no longer reconciles is stale; drop it so
			// the next attempt goes back to the provider.
			s.evict(ctx, messages)
		}
		return nil, err
	}
	return result, nil
}

// complete returns the raw reply, serving from the reply cache when the
// exact same prompt was answered before.
func (s *Service) complete(ctx context.Context, messages []models.ChatMessage) (string, bool, error) {
	key := s.replyKey(messages)
	if s.cache != nil {
		if val, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			return string(val), true, nil
		} else if err != nil {
			s.logger.Warn("reply cache read failed", "error", err)
		}
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.provider.Complete(cctx, models.CompletionRequest{
		Messages:    messages,
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
		Thinking:    s.thinking,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", false, fmt.Errorf("%w after %s: %v", ErrInferenceTimeout, s.timeout, err)
		}
		return "", false, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	if s.cache != nil && s.replyTTL > 0 {
		if err := s.cache.Set(ctx, key, []byte(raw), s.replyTTL); err != nil {
			s.logger.Warn("reply cache write failed", "error", err)
		}
	}
	return raw, false, nil
}

func (s *Service) evict(ctx context.Context, messages []models.ChatMessage) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.replyKey(messages)); err != nil {
		s.logger.Warn("reply cache evict failed", "error", err)
	}
}

// replyKey hashes the provider name and the full message list so any change
// to the prompt, the sample or the provider produces a distinct key.
func (s *Service) replyKey(messages []models.ChatMessage) string {
	h := sha256.New()
	h.Write([]byte(s.provider.Name()))
	enc, _ := json.Marshal(messages)
	h.Write(enc)
	return cache.ReplyKey(hex.EncodeToString(h.Sum(nil)))
}

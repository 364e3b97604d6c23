package handlers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"emam3/chat-relay/completion"
	"emam3/chat-relay/constants"
	"emam3/chat-relay/metrics"
	"emam3/chat-relay/quota"
	"emam3/chat-relay/types"
)

// Relay applies the daily quota to inbound messages and forwards admitted ones
// to the completion API together with the system prompt.
type Relay struct {
	tracker   *quota.Tracker
	completer completion.Completer
	metrics   *metrics.Metrics
	logger    *slog.Logger

	systemPrompt string
	model        string
	maxTokens    int
	timeout      time.Duration
}

type RelayConfig struct {
	SystemPrompt string
	Model        string
	MaxTokens    int
	// Timeout bounds a single completion call.
	Timeout time.Duration
}

func NewRelay(tracker *quota.Tracker, completer completion.Completer, m *metrics.Metrics, logger *slog.Logger, cfg RelayConfig) *Relay {
	if cfg.Model == "" {
		cfg.Model = constants.DefaultModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = constants.MaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.RequestTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		tracker:      tracker,
		completer:    completer,
		metrics:      m,
		logger:       logger,
		systemPrompt: cfg.SystemPrompt,
		model:        cfg.Model,
		maxTokens:    cfg.MaxTokens,
		timeout:      cfg.Timeout,
	}
}

// Admit counts the message against clientID's quota.
func (r *Relay) Admit(clientID string, now time.Time) bool {
	ok := r.tracker.Admit(clientID, now)
	if r.metrics != nil {
		r.metrics.RecordMessage(ok)
	}
	return ok
}

// Complete asks the completion API for a reply to text. Failures are logged and
// turned into AIFailedMessage.
func (r *Relay) Complete(ctx context.Context, text string) string {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	reply, err := r.completer.Complete(ctx, completion.Request{
		Model: r.model,
		Messages: []types.Message{
			{Role: constants.RoleSystem, Content: r.systemPrompt},
			{Role: constants.RoleUser, Content: text},
		},
		MaxTokens: r.maxTokens,
	})
	if r.metrics != nil {
		r.metrics.RecordCompletion(time.Since(start).Seconds(), err != nil)
	}
	if err != nil {
		attrs := []any{"error", err, "model", r.model}
		var apiErr *completion.APIError
		if errors.As(err, &apiErr) {
			attrs = append(attrs,
				"status", apiErr.StatusCode,
				"rate_limited", apiErr.IsRateLimited(),
				"auth", apiErr.IsAuthError(),
			)
		}
		r.logger.ErrorContext(ctx, "completion request failed", attrs...)
		return constants.AIFailedMessage
	}
	return reply
}

// HandleMessage returns the reply for one inbound message from clientID.
// The quota is consumed before the completion outcome is known.
func (r *Relay) HandleMessage(ctx context.Context, clientID, text string, now time.Time) string {
	if !r.Admit(clientID, now) {
		return constants.LimitReachedMessage
	}
	return r.Complete(ctx, text)
}

// Now reads the quota tracker's clock.
func (r *Relay) Now() time.Time {
	return r.tracker.Now()
}

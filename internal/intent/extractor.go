package intent

import (
	"context"
	"log"
	"strings"
	"time"
)

// Kind discriminates extraction results.
type Kind string

const (
	KindCreateReminder Kind = "create_reminder"
	KindUnknown        Kind = "unknown"
)

// ErrorServiceUnavailable marks a result produced when every provider failed.
const ErrorServiceUnavailable = "service_unavailable"

// Result is the structured command extracted from a chat message.
// Datetime is a naive local ISO string; Timezone is empty unless the user named one.
type Result struct {
	Intent   Kind   `json:"intent,omitempty"`
	Task     string `json:"task,omitempty"`
	Datetime string `json:"datetime,omitempty"`
	Timezone string `json:"timezone,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Unknown is the result for messages that do not ask for a reminder.
func Unknown() Result {
	return Result{Intent: KindUnknown}
}

// Unavailable is the degraded result returned when no provider answered.
func Unavailable() Result {
	return Result{Error: ErrorServiceUnavailable}
}

// ServiceUnavailable reports whether the result is the degraded no-provider outcome.
func (r Result) ServiceUnavailable() bool {
	return r.Error == ErrorServiceUnavailable
}

// Provider is a chat-completion backend.
type Provider interface {
	Name() string
	Complete(ctx context.Context, system, user string) (string, error)
}

// RequestObserver records the outcome of each provider call.
type RequestObserver interface {
	ObserveLLMRequest(provider, result string)
}

// Extractor asks its providers in order and stops at the first well-formed answer.
type Extractor struct {
	providers []Provider
	observer  RequestObserver
	logger    *log.Logger
}

// NewExtractor creates an extractor; providers are tried in the given order.
func NewExtractor(logger *log.Logger, observer RequestObserver, providers ...Provider) *Extractor {
	return &Extractor{
		providers: providers,
		observer:  observer,
		logger:    logger,
	}
}

// Extract interprets message relative to now. timezone is the user's current zone,
// which the model uses to express relative times as local wall-clock values.
func (e *Extractor) Extract(ctx context.Context, message string, now time.Time, timezone string) Result {
	if strings.TrimSpace(message) == "" {
		return Unknown()
	}

	system := SystemPrompt(now, timezone)
	answered := false
	for _, provider := range e.providers {
		content, err := provider.Complete(ctx, system, message)
		if err != nil {
			e.logf("intent: provider %s failed: %v", provider.Name(), err)
			e.observe(provider.Name(), "error")
			continue
		}

		result, err := parseReply(content)
		if err != nil {
			e.logf("intent: provider %s: %v", provider.Name(), err)
			e.observe(provider.Name(), "malformed")
			answered = true
			continue
		}

		if result.Intent == KindUnknown {
			e.observe(provider.Name(), "unknown")
		} else {
			e.observe(provider.Name(), "ok")
		}
		return result
	}

	// Garbled replies still mean a provider was reachable.
	if answered {
		return Unknown()
	}
	return Unavailable()
}

func (e *Extractor) observe(provider, result string) {
	if e.observer != nil {
		e.observer.ObserveLLMRequest(provider, result)
	}
}

func (e *Extractor) logf(format string, args ...any) {
	if e.logger != nil {
		e.logger.Printf(format, args...)
	}
}

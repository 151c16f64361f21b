package bot

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/pathakanu/memobot/internal/config"
	"github.com/pathakanu/memobot/internal/intent"
	"github.com/pathakanu/memobot/internal/metrics"
	"github.com/pathakanu/memobot/internal/model"
	"github.com/robfig/cron/v3"
)

const (
	serviceName    = "WhatsApp Reminder Bot"
	serviceVersion = "1.0.0"
)

// Store is the persistence the bot needs for users and reminders.
type Store interface {
	FindUser(ctx context.Context, address string) (*model.User, error)
	UpsertUser(ctx context.Context, address, timezone string) (*model.User, error)
	CreateReminder(ctx context.Context, userID uint, task string, dueAt time.Time, dedupKey string) (*model.Reminder, error)
	ListDuePending(ctx context.Context, now time.Time) ([]model.Reminder, error)
	MarkSent(ctx context.Context, reminderID uint) error
	MarkFailed(ctx context.Context, reminderID uint) error
}

// Messenger delivers plain-text WhatsApp messages and returns the provider message ID.
type Messenger interface {
	SendWhatsAppMessage(to, body string) (string, error)
}

// Extractor turns free text into a reminder command.
type Extractor interface {
	Extract(ctx context.Context, message string, now time.Time, timezone string) intent.Result
}

// SignatureValidator checks inbound webhook signatures.
type SignatureValidator interface {
	ValidateRequest(url string, params map[string]string, signature string) bool
}

// Bot coordinates reminder persistence, messaging, and scheduling.
type Bot struct {
	cfg       *config.Config
	store     Store
	extractor Extractor
	messenger Messenger
	validator SignatureValidator
	metrics   *metrics.Metrics
	cron      *cron.Cron
	now       func() time.Time
	logger    *log.Logger
}

// Option customises a Bot.
type Option func(*Bot)

// WithClock overrides the time source used for extraction and due checks.
func WithClock(now func() time.Time) Option {
	return func(b *Bot) {
		b.now = now
	}
}

// WithSignatureValidator rejects webhook calls whose X-Twilio-Signature does not validate.
func WithSignatureValidator(v SignatureValidator) Option {
	return func(b *Bot) {
		b.validator = v
	}
}

// New creates a fully configured Bot instance.
func New(cfg *config.Config, store Store, extractor Extractor, messenger Messenger, m *metrics.Metrics, logger *log.Logger, opts ...Option) *Bot {
	b := &Bot{
		cfg:       cfg,
		store:     store,
		extractor: extractor,
		messenger: messenger,
		metrics:   m,
		now:       time.Now,
		logger:    logger,
	}
	b.cron = cron.New(cron.WithChain(
		cron.Recover(cron.PrintfLogger(logger)),
		cron.DelayIfStillRunning(cron.PrintfLogger(logger)),
	))
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// StartScheduler registers the delivery poll and starts the scheduler loop.
// A tick that fires while a cycle is still running waits for that cycle to finish.
func (b *Bot) StartScheduler() error {
	_, err := b.cron.AddFunc(fmt.Sprintf("@every %s", b.cfg.PollInterval), func() {
		if err := b.RunDeliveryCycle(context.Background()); err != nil {
			b.logger.Printf("scheduler: %v", err)
		}
	})
	if err != nil {
		return err
	}
	b.cron.Start()
	return nil
}

// StopScheduler stops the cron scheduler and waits for a running cycle to finish.
func (b *Bot) StopScheduler() {
	ctx := b.cron.Stop()
	<-ctx.Done()
}

// Handler returns the HTTP handler for incoming Twilio messages.
func (b *Bot) Handler() http.HandlerFunc {
	return b.handleIncomingMessage
}

// RegisterRoutes mounts the webhook, health, and info endpoints on mux.
func (b *Bot) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("POST /twilio/webhook", b.Handler())
	mux.Handle("POST /webhook/whatsapp", b.Handler())
	mux.HandleFunc("GET /health", b.handleHealth)
	mux.HandleFunc("GET /{$}", b.handleInfo)
}

func (b *Bot) handleHealth(w http.ResponseWriter, _ *http.Request) {
	b.writeJSON(w, map[string]string{
		"status":    "ok",
		"timestamp": b.now().UTC().Format(time.RFC3339),
	})
}

func (b *Bot) handleInfo(w http.ResponseWriter, _ *http.Request) {
	b.writeJSON(w, map[string]any{
		"service": serviceName,
		"version": serviceVersion,
		"endpoints": map[string]string{
			"health":  "GET /health",
			"webhook": "POST /twilio/webhook",
		},
	})
}

func (b *Bot) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		b.logger.Printf("json response encode: %v", err)
	}
}

// writeTwilioResponse acknowledges the webhook with an empty TwiML document.
// Replies are sent through the REST API so the transport never sees anything but 200.
func (b *Bot) writeTwilioResponse(w http.ResponseWriter) {
	twiml := struct {
		XMLName xml.Name `xml:"Response"`
	}{}

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	if err := xml.NewEncoder(w).Encode(twiml); err != nil {
		b.logger.Printf("twilio response encode: %v", err)
	}
}

// DecodeTwilioForm extracts the POST form data into a map for convenience.
func DecodeTwilioForm(values url.Values) map[string]string {
	result := make(map[string]string, len(values))
	for key, value := range values {
		if len(value) > 0 {
			result[key] = value[0]
		}
	}
	return result
}

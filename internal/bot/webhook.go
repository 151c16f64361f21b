package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/pathakanu/memobot/internal/database"
	"github.com/pathakanu/memobot/internal/intent"
	"github.com/pathakanu/memobot/internal/phone"
	"github.com/pathakanu/memobot/internal/timeutil"
)

// Webhook outcomes, used as the metrics label.
const (
	outcomeCreated     = "created"
	outcomeDuplicate   = "duplicate"
	outcomeIgnored     = "ignored"
	outcomeSelf        = "self"
	outcomeBadSig      = "bad_signature"
	outcomeUnavailable = "unavailable"
	outcomeUnknown     = "unknown_intent"
	outcomeNoTask      = "missing_task"
	outcomeBadTime     = "invalid_time"
	outcomePastTime    = "past_time"
	outcomeError       = "error"
)

const signatureHeader = "X-Twilio-Signature"

// handleIncomingMessage processes Twilio webhook POST requests. Every path answers 200
// so that Twilio never redelivers; failures are reported to the sender over chat.
func (b *Bot) handleIncomingMessage(w http.ResponseWriter, r *http.Request) {
	outcome := b.processInbound(r)
	b.metrics.ObserveWebhook(outcome)
	b.writeTwilioResponse(w)
}

func (b *Bot) processInbound(r *http.Request) (outcome string) {
	var from, messageSID string
	defer func() {
		if rec := recover(); rec != nil {
			b.logger.Printf("webhook: panic handling %s from %s: %v", messageSID, from, rec)
			if from != "" {
				b.reply(from, msgInternalError)
			}
			outcome = outcomeError
		}
	}()

	if err := r.ParseForm(); err != nil {
		b.logger.Printf("webhook: parse error: %v", err)
		return outcomeIgnored
	}
	params := DecodeTwilioForm(r.PostForm)

	if b.validator != nil && !b.validator.ValidateRequest(b.cfg.PublicWebhookURL, params, r.Header.Get(signatureHeader)) {
		b.logger.Printf("webhook: signature check failed for %s", params["MessageSid"])
		return outcomeBadSig
	}

	from = strings.TrimSpace(params["From"])
	body := strings.TrimSpace(params["Body"])
	messageSID = strings.TrimSpace(params["MessageSid"])
	if from == "" || body == "" {
		b.logger.Printf("webhook: missing From or Body (sid %q)", messageSID)
		return outcomeIgnored
	}

	if b.isOwnAddress(from) {
		b.logger.Printf("webhook: ignoring message from own number %s", from)
		return outcomeSelf
	}

	result, err := b.createReminderFromMessage(r.Context(), from, body, messageSID)
	if err != nil {
		b.logger.Printf("webhook: %s from %s: %v", messageSID, from, err)
		b.reply(from, msgInternalError)
		return outcomeError
	}
	return result
}

// createReminderFromMessage runs one inbound message through extraction, validation and
// persistence. User-input problems are answered over chat and return a nil error.
func (b *Bot) createReminderFromMessage(ctx context.Context, from, body, messageSID string) (string, error) {
	address := phone.NormalizeOrRaw(from)

	timezone := b.cfg.DefaultTimezone
	user, err := b.store.FindUser(ctx, address)
	if err != nil {
		return "", err
	}
	if user != nil && user.Timezone != "" {
		timezone = user.Timezone
	}

	now := b.now().UTC()
	result := b.extractor.Extract(ctx, body, now, timezone)

	if result.ServiceUnavailable() {
		b.reply(address, msgUnavailable)
		return outcomeUnavailable, nil
	}
	if result.Intent != intent.KindCreateReminder {
		b.reply(address, msgUnknownIntent)
		return outcomeUnknown, nil
	}

	task := strings.TrimSpace(result.Task)
	if task == "" {
		b.reply(address, msgMissingTask)
		return outcomeNoTask, nil
	}
	if result.Datetime == "" || !timeutil.IsParsable(result.Datetime) {
		b.reply(address, msgInvalidTime)
		return outcomeBadTime, nil
	}

	if result.Timezone != "" {
		if timeutil.ValidZone(result.Timezone) {
			timezone = result.Timezone
		} else {
			b.logger.Printf("webhook: ignoring unknown timezone %q from extractor", result.Timezone)
		}
	}

	dueAt, err := timeutil.ToAbsoluteInstant(result.Datetime, timezone)
	if err != nil {
		b.reply(address, msgInvalidTime)
		return outcomeBadTime, nil
	}
	if !timeutil.IsFutureAt(dueAt, now) {
		b.reply(address, msgPastTime)
		return outcomePastTime, nil
	}

	owner, err := b.store.UpsertUser(ctx, address, timezone)
	if err != nil {
		return "", err
	}

	reminder, err := b.store.CreateReminder(ctx, owner.ID, task, dueAt, messageSID)
	if errors.Is(err, database.ErrDuplicateReminder) {
		b.logger.Printf("webhook: duplicate delivery of %s for %s", messageSID, address)
		return outcomeDuplicate, nil
	}
	if err != nil {
		return "", fmt.Errorf("save reminder: %w", err)
	}

	b.logger.Printf("webhook: reminder %d for %s due %s", reminder.ID, address, reminder.DueAt.Format("2006-01-02T15:04:05Z07:00"))
	b.reply(address, confirmationMessage(task, timeutil.ToLocalDisplay(dueAt, timezone)))
	return outcomeCreated, nil
}

// isOwnAddress reports whether from is the bot's configured WhatsApp number.
func (b *Bot) isOwnAddress(from string) bool {
	own := strings.TrimSpace(b.cfg.TwilioWhatsAppNumber)
	if own == "" {
		return false
	}
	return phone.NormalizeOrRaw(from) == phone.NormalizeOrRaw(own)
}

// reply sends a chat message. Failures, including a panicking transport, are only logged.
func (b *Bot) reply(to, message string) {
	defer func() {
		if rec := recover(); rec != nil {
			b.logger.Printf("webhook: reply to %s panicked: %v", to, rec)
		}
	}()

	if _, err := b.messenger.SendWhatsAppMessage(to, message); err != nil {
		b.logger.Printf("webhook: reply to %s failed: %v", to, err)
	}
}

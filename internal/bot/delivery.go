package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/pathakanu/memobot/internal/model"
)

// RunDeliveryCycle sends every pending reminder that is due. Each reminder ends the cycle
// either sent or failed; one failure never stops the rest of the batch.
func (b *Bot) RunDeliveryCycle(ctx context.Context) error {
	start := time.Now()
	defer func() {
		b.metrics.ObservePollCycle(time.Since(start))
	}()

	due, err := b.store.ListDuePending(ctx, b.now())
	if err != nil {
		return fmt.Errorf("fetch due reminders: %w", err)
	}
	if len(due) > 0 {
		b.logger.Printf("delivery: %d reminder(s) due", len(due))
	}

	for _, reminder := range due {
		status := b.deliver(ctx, reminder)
		b.metrics.ObserveDelivery(string(status))
	}
	return nil
}

func (b *Bot) deliver(ctx context.Context, reminder model.Reminder) (status model.ReminderStatus) {
	if reminder.IsTerminal() {
		return reminder.Status
	}

	defer func() {
		if rec := recover(); rec != nil {
			b.logger.Printf("delivery: reminder %d panicked: %v", reminder.ID, rec)
			status = b.markFailed(ctx, reminder.ID)
		}
	}()

	sid, err := b.messenger.SendWhatsAppMessage(reminder.User.Address, notificationMessage(reminder.Task))
	if err != nil {
		b.logger.Printf("delivery: reminder %d to %s: %v", reminder.ID, reminder.User.Address, err)
		return b.markFailed(ctx, reminder.ID)
	}

	if err := b.store.MarkSent(ctx, reminder.ID); err != nil {
		b.logger.Printf("delivery: reminder %d sent (%s) but not marked: %v", reminder.ID, sid, err)
		return model.StatusSent
	}
	b.logger.Printf("delivery: reminder %d sent, SID: %s", reminder.ID, sid)
	return model.StatusSent
}

func (b *Bot) markFailed(ctx context.Context, reminderID uint) model.ReminderStatus {
	if err := b.store.MarkFailed(ctx, reminderID); err != nil {
		b.logger.Printf("delivery: mark reminder %d failed: %v", reminderID, err)
	}
	return model.StatusFailed
}

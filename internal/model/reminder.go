package model

import "time"

// ReminderStatus is the delivery state of a reminder.
type ReminderStatus string

const (
	StatusPending ReminderStatus = "pending"
	StatusSent    ReminderStatus = "sent"
	StatusFailed  ReminderStatus = "failed"
)

// User is a WhatsApp sender identified by its canonical channel address.
type User struct {
	ID        uint      `gorm:"primaryKey"`
	Address   string    `gorm:"size:64;uniqueIndex;not null"`
	Timezone  string    `gorm:"size:64;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Reminder represents a saved reminder for a WhatsApp user.
// DedupKey carries the inbound message SID; NULL keys never collide.
type Reminder struct {
	ID        uint           `gorm:"primaryKey"`
	UserID    uint           `gorm:"not null;uniqueIndex:ux_reminder_user_dedup,priority:1"`
	User      User           `gorm:"constraint:OnDelete:CASCADE"`
	Task      string         `gorm:"type:text;not null"`
	DueAt     time.Time      `gorm:"not null;index:ix_reminder_status_due,priority:2"`
	Status    ReminderStatus `gorm:"size:16;not null;default:pending;index:ix_reminder_status_due,priority:1"`
	DedupKey  *string        `gorm:"size:64;uniqueIndex:ux_reminder_user_dedup,priority:2"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

// IsTerminal reports whether the reminder can no longer change status.
func (r Reminder) IsTerminal() bool {
	return r.Status == StatusSent || r.Status == StatusFailed
}

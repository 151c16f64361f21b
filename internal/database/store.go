package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/pathakanu/memobot/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrDuplicateReminder is returned when a reminder already exists for the (user, dedup key) pair.
var ErrDuplicateReminder = errors.New("reminder already exists for this message")

const (
	dueReminderCondition = "reminders.status = ? AND reminders.due_at <= ?"
	// dueReminderQueryMarker identifies the poll query in rendered SQL.
	dueReminderQueryMarker = "reminders.due_at <="

	pgUniqueViolation = "23505"
)

// Store persists users and reminders.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an open, migrated connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// FindUser returns the user for address, or nil when there is none.
func (s *Store) FindUser(ctx context.Context, address string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("address = ?", address).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", address, err)
	}
	return &user, nil
}

// UpsertUser creates the user if absent. An existing user's timezone is only
// overwritten when timezone is non-empty.
func (s *Store) UpsertUser(ctx context.Context, address, timezone string) (*model.User, error) {
	conflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoNothing: true,
	}
	if timezone != "" {
		conflict = clause.OnConflict{
			Columns:   []clause.Column{{Name: "address"}},
			DoUpdates: clause.AssignmentColumns([]string{"timezone", "updated_at"}),
		}
	}

	user := model.User{Address: address, Timezone: timezone}
	if err := s.db.WithContext(ctx).Clauses(conflict).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("upsert user %s: %w", address, err)
	}

	// ON CONFLICT DO NOTHING leaves the ID unset, so read the row back.
	stored, err := s.FindUser(ctx, address)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("upsert user %s: row missing after write", address)
	}
	return stored, nil
}

// CreateReminder stores a pending reminder. An empty dedupKey disables deduplication.
func (s *Store) CreateReminder(ctx context.Context, userID uint, task string, dueAt time.Time, dedupKey string) (*model.Reminder, error) {
	reminder := &model.Reminder{
		UserID: userID,
		Task:   task,
		DueAt:  dueAt.UTC().Truncate(time.Second),
		Status: model.StatusPending,
	}
	if dedupKey != "" {
		reminder.DedupKey = &dedupKey
	}

	if err := s.db.WithContext(ctx).Omit("User").Create(reminder).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateReminder
		}
		return nil, fmt.Errorf("create reminder: %w", err)
	}
	return reminder, nil
}

// ListDuePending returns pending reminders due at or before now, oldest first,
// with the owning user loaded.
func (s *Store) ListDuePending(ctx context.Context, now time.Time) ([]model.Reminder, error) {
	var reminders []model.Reminder
	err := s.db.WithContext(ctx).
		Preload("User").
		Where(dueReminderCondition, model.StatusPending, now.UTC().Truncate(time.Second)).
		Order("reminders.due_at ASC, reminders.id ASC").
		Find(&reminders).Error
	if err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}
	return reminders, nil
}

// MarkSent moves a pending reminder to sent. Terminal reminders are left untouched.
func (s *Store) MarkSent(ctx context.Context, reminderID uint) error {
	return s.transition(ctx, reminderID, model.StatusSent)
}

// MarkFailed moves a pending reminder to failed. Terminal reminders are left untouched.
func (s *Store) MarkFailed(ctx context.Context, reminderID uint) error {
	return s.transition(ctx, reminderID, model.StatusFailed)
}

func (s *Store) transition(ctx context.Context, reminderID uint, to model.ReminderStatus) error {
	err := s.db.WithContext(ctx).
		Model(&model.Reminder{}).
		Where("id = ? AND status = ?", reminderID, model.StatusPending).
		Update("status", to).Error
	if err != nil {
		return fmt.Errorf("mark reminder %d %s: %w", reminderID, to, err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

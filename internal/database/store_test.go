package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pathakanu/memobot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(NewTestDB(t))
}

func TestFindUserMissing(t *testing.T) {
	store := newTestStore(t)

	user, err := store.FindUser(context.Background(), "whatsapp:+15550000000")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUpsertUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.UpsertUser(ctx, "whatsapp:+15551112222", "Asia/Kolkata")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Asia/Kolkata", created.Timezone)

	updated, err := store.UpsertUser(ctx, "whatsapp:+15551112222", "Europe/Paris")
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Europe/Paris", updated.Timezone)

	untouched, err := store.UpsertUser(ctx, "whatsapp:+15551112222", "")
	require.NoError(t, err)
	assert.Equal(t, created.ID, untouched.ID)
	assert.Equal(t, "Europe/Paris", untouched.Timezone)

	found, err := store.FindUser(ctx, "whatsapp:+15551112222")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Europe/Paris", found.Timezone)
}

func TestCreateReminderDeduplicates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user, err := store.UpsertUser(ctx, "whatsapp:+15553334444", "UTC")
	require.NoError(t, err)
	other, err := store.UpsertUser(ctx, "whatsapp:+15559990000", "UTC")
	require.NoError(t, err)

	due := time.Now().Add(time.Hour)
	first, err := store.CreateReminder(ctx, user.ID, "call mom", due, "SM123")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, first.Status)
	require.NotNil(t, first.DedupKey)
	assert.Equal(t, "SM123", *first.DedupKey)

	_, err = store.CreateReminder(ctx, user.ID, "call mom", due, "SM123")
	assert.ErrorIs(t, err, ErrDuplicateReminder)

	// Same key for a different owner is a different reminder.
	_, err = store.CreateReminder(ctx, other.ID, "call mom", due, "SM123")
	require.NoError(t, err)

	// Reminders without a key never collide.
	_, err = store.CreateReminder(ctx, user.ID, "stretch", due, "")
	require.NoError(t, err)
	_, err = store.CreateReminder(ctx, user.ID, "stretch", due, "")
	require.NoError(t, err)

	var count int64
	require.NoError(t, store.db.Model(&model.Reminder{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestListDuePending(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	user, err := store.UpsertUser(ctx, "whatsapp:+15556667777", "Asia/Kolkata")
	require.NoError(t, err)

	later, err := store.CreateReminder(ctx, user.ID, "second", now.Add(-time.Minute), "")
	require.NoError(t, err)
	earlier, err := store.CreateReminder(ctx, user.ID, "first", now.Add(-time.Hour), "")
	require.NoError(t, err)
	_, err = store.CreateReminder(ctx, user.ID, "future", now.Add(time.Hour), "")
	require.NoError(t, err)
	done, err := store.CreateReminder(ctx, user.ID, "already sent", now.Add(-2*time.Hour), "")
	require.NoError(t, err)
	require.NoError(t, store.MarkSent(ctx, done.ID))

	due, err := store.ListDuePending(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, earlier.ID, due[0].ID)
	assert.Equal(t, later.ID, due[1].ID)
	assert.Equal(t, "whatsapp:+15556667777", due[0].User.Address)
	assert.Equal(t, "Asia/Kolkata", due[0].User.Timezone)
}

func TestStatusTransitionsAreTerminal(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user, err := store.UpsertUser(ctx, "whatsapp:+15558889999", "UTC")
	require.NoError(t, err)

	sent, err := store.CreateReminder(ctx, user.ID, "sent one", time.Now().Add(-time.Minute), "")
	require.NoError(t, err)
	failed, err := store.CreateReminder(ctx, user.ID, "failed one", time.Now().Add(-time.Minute), "")
	require.NoError(t, err)

	require.NoError(t, store.MarkSent(ctx, sent.ID))
	require.NoError(t, store.MarkFailed(ctx, failed.ID))

	// Terminal reminders ignore further transitions.
	require.NoError(t, store.MarkFailed(ctx, sent.ID))
	require.NoError(t, store.MarkSent(ctx, failed.ID))
	// Unknown IDs are not an error either.
	require.NoError(t, store.MarkSent(ctx, 4242))

	assert.Equal(t, model.StatusSent, reload(t, store, sent.ID).Status)
	assert.Equal(t, model.StatusFailed, reload(t, store, failed.ID).Status)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(errors.Join(errors.New("insert"), gorm.ErrDuplicatedKey)))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
	assert.False(t, isUniqueViolation(nil))
}

func reload(t *testing.T, store *Store, id uint) model.Reminder {
	t.Helper()
	var reminder model.Reminder
	require.NoError(t, store.db.First(&reminder, id).Error)
	return reminder
}

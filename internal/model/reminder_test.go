package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReminderIsTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, Reminder{Status: StatusPending}.IsTerminal())
	assert.True(t, Reminder{Status: StatusSent}.IsTerminal())
	assert.True(t, Reminder{Status: StatusFailed}.IsTerminal())
}

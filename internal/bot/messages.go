package bot

import "fmt"

const (
	msgUnknownIntent = "Sorry, I didn't understand that. Try: 'remind me to [task] at [time]'"
	msgMissingTask   = "I couldn't understand what to remind you about. Please try again."
	msgInvalidTime   = "I couldn't understand the time. Please specify when you want to be reminded."
	msgPastTime      = "The reminder time has already passed. Please specify a future time."
	msgUnavailable   = "I'm a bit overloaded right now. Please try again in a few minutes."
	msgInternalError = "Sorry, something went wrong. Please try again later."
)

func confirmationMessage(task, when string) string {
	return fmt.Sprintf("✅ Reminder set!\n\nTask: %s\nTime: %s", task, when)
}

func notificationMessage(task string) string {
	return fmt.Sprintf("⏰ Reminder: %s\n\nThis is your scheduled reminder!", task)
}

// Package phone canonicalizes WhatsApp channel addresses.
package phone

import (
	"errors"
	"strings"
)

// ChannelPrefix is the Twilio address prefix for the WhatsApp channel.
const ChannelPrefix = "whatsapp:"

// ErrInvalidInput is returned when there is nothing to normalize.
var ErrInvalidInput = errors.New("phone number is required")

// Normalize returns the address as "whatsapp:+<digits>".
//
// Any digit string without a leading "+" is assumed to already carry its
// country code, so national-format numbers come out wrong. The result is
// best-effort and must not be treated as validated.
func Normalize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidInput
	}

	trimmed = strings.TrimPrefix(trimmed, ChannelPrefix)

	var sb strings.Builder
	sb.Grow(len(trimmed) + 1)
	for _, r := range strings.TrimSpace(trimmed) {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}

	return ChannelPrefix + "+" + sb.String(), nil
}

// NormalizeOrRaw normalizes raw and falls back to the trimmed input when
// normalization fails or leaves no digits.
func NormalizeOrRaw(raw string) string {
	normalized, err := Normalize(raw)
	if err != nil || normalized == ChannelPrefix+"+" {
		return strings.TrimSpace(raw)
	}
	return normalized
}

package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"whatsapp:+1234567890":        "whatsapp:+1234567890",
		"+1234567890":                 "whatsapp:+1234567890",
		"1234567890":                  "whatsapp:+1234567890",
		"whatsapp:1234567890":         "whatsapp:+1234567890",
		"+1-234-567-890":              "whatsapp:+1234567890",
		" +1 (234) 567-890 ":          "whatsapp:+1234567890",
		"whatsapp:+1 234 567 890":     "whatsapp:+1234567890",
		"whatsapp:+91 80732 95463":    "whatsapp:+918073295463",
		"+44+20 7946 0958":            "whatsapp:+442079460958",
	}

	for input, want := range cases {
		got, err := Normalize(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)

		again, err := Normalize(got)
		require.NoError(t, err)
		assert.Equal(t, got, again, "normalize should be idempotent for %q", input)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "   "} {
		_, err := Normalize(input)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestNormalizeDegradesOnGarbage(t *testing.T) {
	t.Parallel()

	got, err := Normalize("not a number")
	require.NoError(t, err)
	assert.Equal(t, "whatsapp:+", got)
}

func TestNormalizeOrRaw(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "whatsapp:+15551234567", NormalizeOrRaw("+1 555 123 4567"))
	assert.Equal(t, "", NormalizeOrRaw(""))
	assert.Equal(t, "not a number", NormalizeOrRaw(" not a number "))
	assert.Equal(t, "whatsapp:alice", NormalizeOrRaw("whatsapp:alice"))
	assert.NotEqual(t, NormalizeOrRaw("whatsapp:alice"), NormalizeOrRaw("whatsapp:bob"))
}

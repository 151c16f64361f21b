package twilio

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testAuthToken = "12345"

func sign(url string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	data := url
	for _, k := range keys {
		data += k + params[k]
	}

	mac := hmac.New(sha1.New, []byte(testAuthToken))
	mac.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	client := New("AC123", testAuthToken, "whatsapp:+14155238886", nil)
	url := "https://memobot.example.com/twilio/webhook"
	params := map[string]string{
		"From":       "whatsapp:+15551234567",
		"Body":       "remind me to call mom in 5 minutes",
		"MessageSid": "SM0001",
	}

	assert.True(t, client.ValidateRequest(url, params, sign(url, params)))
	assert.False(t, client.ValidateRequest(url, params, "bogus"))
	assert.False(t, client.ValidateRequest(url, params, ""))

	tampered := map[string]string{"From": params["From"], "Body": "something else", "MessageSid": "SM0001"}
	assert.False(t, client.ValidateRequest(url, tampered, sign(url, params)))
}

func TestSendWithoutCredentials(t *testing.T) {
	t.Parallel()

	client := New("", "", "whatsapp:+14155238886", nil)
	_, err := client.SendWhatsAppMessage("whatsapp:+15551234567", "hello")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSendRequiresRecipient(t *testing.T) {
	t.Parallel()

	client := New("AC123", testAuthToken, "whatsapp:+14155238886", nil)
	_, err := client.SendWhatsAppMessage("", "hello")
	assert.Error(t, err)
}

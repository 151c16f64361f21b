package twilio

import (
	"errors"
	"fmt"
	"log"

	twilio "github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/pathakanu/memobot/internal/phone"
)

// ErrNotConfigured is returned when sending without account credentials.
var ErrNotConfigured = errors.New("twilio client not initialised")

// Client wraps Twilio messaging operations required by the bot.
type Client struct {
	client       *twilio.RestClient
	validator    twclient.RequestValidator
	fromWhatsApp string
	logger       *log.Logger
}

// New creates a Twilio client bound to the configured WhatsApp sender number.
func New(accountSID, authToken, fromWhatsApp string, logger *log.Logger) *Client {
	c := &Client{
		validator:    twclient.NewRequestValidator(authToken),
		fromWhatsApp: fromWhatsApp,
		logger:       logger,
	}
	if accountSID != "" && authToken != "" {
		c.client = twilio.NewRestClientWithParams(twilio.ClientParams{Username: accountSID, Password: authToken})
	}
	return c
}

// SendWhatsAppMessage sends a WhatsApp message via Twilio's API and returns the message SID.
func (c *Client) SendWhatsAppMessage(to, body string) (string, error) {
	if c.client == nil {
		return "", ErrNotConfigured
	}

	sender, err := phone.Normalize(c.fromWhatsApp)
	if err != nil {
		return "", errors.New("twilio sender WhatsApp number is not configured")
	}

	recipient, err := phone.Normalize(to)
	if err != nil {
		return "", errors.New("recipient number missing or invalid")
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(recipient)
	params.SetFrom(sender)
	params.SetBody(body)

	resp, err := c.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio send message error: %w", err)
	}

	sid := ""
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}
	if c.logger != nil {
		c.logger.Printf("twilio: message sent to %s, SID: %s", recipient, sid)
	}
	return sid, nil
}

// ValidateRequest checks an X-Twilio-Signature header against the public webhook URL and form parameters.
func (c *Client) ValidateRequest(url string, params map[string]string, signature string) bool {
	if signature == "" {
		return false
	}
	return c.validator.Validate(url, params, signature)
}

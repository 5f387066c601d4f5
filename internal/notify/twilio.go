package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

const whatsappScheme = "whatsapp:"

// DefaultTwilioTimeout bounds a single Twilio API call.
const DefaultTwilioTimeout = 15 * time.Second

// ErrTwilioNotConfigured is returned when credentials are missing.
var ErrTwilioNotConfigured = errors.New("notify: twilio credentials are not configured")

// messageCreator is the part of the Twilio API used by TwilioSender.
type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// TwilioSender delivers WhatsApp messages through Twilio.
type TwilioSender struct {
	api  messageCreator
	from string
}

// NewTwilioSender creates a sender for the given account. from is a WhatsApp sender number.
// A non-positive timeout uses DefaultTwilioTimeout.
func NewTwilioSender(accountSID, authToken, from string, timeout time.Duration) (*TwilioSender, error) {
	accountSID = strings.TrimSpace(accountSID)
	authToken = strings.TrimSpace(authToken)
	if accountSID == "" || authToken == "" || strings.TrimSpace(from) == "" {
		return nil, ErrTwilioNotConfigured
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	if timeout <= 0 {
		timeout = DefaultTwilioTimeout
	}
	client.SetTimeout(timeout)
	return &TwilioSender{api: client.Api, from: whatsappAddress(from)}, nil
}

// Send implements Sender.
func (s *TwilioSender) Send(ctx context.Context, contact, message string) error {
	if errCtx := ctx.Err(); errCtx != nil {
		return errCtx
	}
	params := &openapi.CreateMessageParams{}
	params.SetTo(whatsappAddress(contact))
	params.SetFrom(s.from)
	params.SetBody(message)

	resp, errCreate := s.api.CreateMessage(params)
	if errCreate != nil {
		return fmt.Errorf("notify: twilio send: %w", errCreate)
	}
	entry := log.WithField("contact", MaskContact(contact))
	if resp != nil && resp.Sid != nil {
		entry = entry.WithField("sid", *resp.Sid)
	}
	entry.Debug("notify: whatsapp message queued")
	return nil
}

func whatsappAddress(number string) string {
	number = strings.TrimSpace(number)
	if strings.HasPrefix(number, whatsappScheme) {
		return number
	}
	return whatsappScheme + number
}

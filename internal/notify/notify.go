// Package notify delivers voucher codes to recipients.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Sender delivers a text message to a contact.
type Sender interface {
	Send(ctx context.Context, contact, message string) error
}

// VoucherMessage renders the message sent to a voucher recipient.
func VoucherMessage(code string, amount decimal.Decimal, currency string, validityDays int) string {
	if strings.TrimSpace(currency) == "" {
		currency = "R"
	}
	return fmt.Sprintf("Your CASHCLEAR Code: %s\nValue: %s%s\nExpires in %d days.", code, currency, amount.StringFixed(2), validityDays)
}

// LogSender logs messages instead of delivering them.
type LogSender struct{}

// Send implements Sender.
func (LogSender) Send(_ context.Context, contact, message string) error {
	log.WithFields(log.Fields{
		"contact": MaskContact(contact),
		"chars":   len(message),
	}).Info("notify: message not delivered (log driver)")
	return nil
}

// MaskContact hides all but the last four digits of a contact.
func MaskContact(contact string) string {
	contact = strings.TrimSpace(contact)
	if len(contact) <= 4 {
		return strings.Repeat("*", len(contact))
	}
	return strings.Repeat("*", len(contact)-4) + contact[len(contact)-4:]
}

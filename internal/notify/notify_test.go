package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeCreator struct {
	params *openapi.CreateMessageParams
	err    error
}

func (f *fakeCreator) CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	return &openapi.ApiV2010Message{Sid: &sid}, nil
}

func TestVoucherMessage(t *testing.T) {
	got := VoucherMessage("PIP-4567-1234", decimal.RequireFromString("50"), "R", 30)
	want := "Your CASHCLEAR Code: PIP-4567-1234\nValue: R50.00\nExpires in 30 days."
	if got != want {
		t.Fatalf("message = %q, want %q", got, want)
	}
}

func TestMaskContact(t *testing.T) {
	if got := MaskContact("+27821234567"); got != "********4567" {
		t.Fatalf("mask = %q", got)
	}
	if got := MaskContact("123"); got != "***" {
		t.Fatalf("mask short = %q", got)
	}
}

func TestTwilioSenderAddressesWhatsApp(t *testing.T) {
	creator := &fakeCreator{}
	sender := &TwilioSender{api: creator, from: whatsappAddress("+14155238886")}
	if errSend := sender.Send(context.Background(), "+27821234567", "hello"); errSend != nil {
		t.Fatalf("send: %v", errSend)
	}
	if creator.params == nil || creator.params.To == nil || *creator.params.To != "whatsapp:+27821234567" {
		t.Fatalf("unexpected to: %+v", creator.params)
	}
	if *creator.params.From != "whatsapp:+14155238886" || *creator.params.Body != "hello" {
		t.Fatalf("unexpected params: from=%v body=%v", *creator.params.From, *creator.params.Body)
	}
}

func TestTwilioSenderPropagatesFailure(t *testing.T) {
	sender := &TwilioSender{api: &fakeCreator{err: errors.New("boom")}, from: "whatsapp:+1"}
	if errSend := sender.Send(context.Background(), "+27821234567", "hi"); errSend == nil {
		t.Fatalf("expected error")
	}
}

func TestNewTwilioSenderRequiresCredentials(t *testing.T) {
	if _, errNew := NewTwilioSender("", "token", "+1", 0); !errors.Is(errNew, ErrTwilioNotConfigured) {
		t.Fatalf("expected ErrTwilioNotConfigured, got %v", errNew)
	}
	sender, errNew := NewTwilioSender("AC123", "token", "whatsapp:+14155238886", time.Second)
	if errNew != nil {
		t.Fatalf("new sender: %v", errNew)
	}
	if sender.from != "whatsapp:+14155238886" {
		t.Fatalf("from = %q", sender.from)
	}
}

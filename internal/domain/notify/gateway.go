package notify

import (
	"context"
	"regexp"
	"strings"

	"github.com/netbill/backend/internal/domain/shared"
)

// SendResult reports the outcome of one message delivery attempt
type SendResult struct {
	Recipient string
	MessageID string
	Delivered bool
	Error     string
}

// SMSSender delivers text messages through a provider
type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) (*SendResult, error)
}

// WhatsAppSender delivers WhatsApp messages through a provider
type WhatsAppSender interface {
	SendWhatsApp(ctx context.Context, phone, message string) (*SendResult, error)
}

var phoneDigits = regexp.MustCompile(`\D`)

// NormalizeKenyanPhone canonicalizes a phone number to the 254XXXXXXXXX
// form. Accepted inputs are 07XX/01XX local numbers, 7XX/1XX bare
// numbers, +254 international formats and already-normalized numbers.
func NormalizeKenyanPhone(phone string) (string, error) {
	digits := phoneDigits.ReplaceAllString(strings.TrimSpace(phone), "")
	if digits == "" {
		return "", shared.NewDomainError("INVALID_PHONE", "Phone number is empty")
	}

	switch {
	case strings.HasPrefix(digits, "254") && len(digits) == 12:
		return digits, nil
	case strings.HasPrefix(digits, "0") && len(digits) == 10:
		return "254" + digits[1:], nil
	case (strings.HasPrefix(digits, "7") || strings.HasPrefix(digits, "1")) && len(digits) == 9:
		return "254" + digits, nil
	default:
		return "", shared.NewDomainError("INVALID_PHONE", "Phone number is not a valid Kenyan number")
	}
}

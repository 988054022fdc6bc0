package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/netbill/backend/internal/domain/notify"
	"github.com/netbill/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewWhatsAppSender selects the WhatsApp provider from configuration
func NewWhatsAppSender(cfg config.WhatsAppConfig, logger *zap.Logger) notify.WhatsAppSender {
	if cfg.Provider == "twilio" {
		return NewTwilioWhatsAppSender(cfg, logger)
	}
	return NewMockWhatsAppSender(logger)
}

// TwilioWhatsAppSender delivers WhatsApp messages through the Twilio
// Messages API using form-encoded requests and basic auth.
type TwilioWhatsAppSender struct {
	cfg        config.WhatsAppConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewTwilioWhatsAppSender creates a Twilio-backed WhatsApp sender
func NewTwilioWhatsAppSender(cfg config.WhatsAppConfig, logger *zap.Logger) *TwilioWhatsAppSender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &TwilioWhatsAppSender{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type twilioMessageResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorMessage string `json:"message"`
}

// SendWhatsApp posts one message to the Twilio Messages endpoint
func (s *TwilioWhatsAppSender) SendWhatsApp(ctx context.Context, phone, message string) (*notify.SendResult, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.cfg.BaseURL, s.cfg.AccountSID)

	form := url.Values{}
	form.Set("To", "whatsapp:+"+phone)
	form.Set("From", "whatsapp:"+s.cfg.FromNumber)
	form.Set("Body", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.cfg.AccountSID, s.cfg.AuthToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whatsapp send: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed twilioMessageResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("whatsapp send: decode response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return &notify.SendResult{
			Recipient: phone,
			Delivered: false,
			Error:     fmt.Sprintf("status %d: %s", resp.StatusCode, parsed.ErrorMessage),
		}, nil
	}

	return &notify.SendResult{
		Recipient: phone,
		MessageID: parsed.SID,
		Delivered: true,
	}, nil
}

// MockWhatsAppSender logs messages instead of delivering them
type MockWhatsAppSender struct {
	logger *zap.Logger

	mu   sync.Mutex
	sent []string
}

// NewMockWhatsAppSender creates a logging WhatsApp sender for development
func NewMockWhatsAppSender(logger *zap.Logger) *MockWhatsAppSender {
	return &MockWhatsAppSender{logger: logger}
}

// SendWhatsApp records the message and reports success
func (s *MockWhatsAppSender) SendWhatsApp(ctx context.Context, phone, message string) (*notify.SendResult, error) {
	s.mu.Lock()
	s.sent = append(s.sent, phone)
	s.mu.Unlock()

	s.logger.Info("Simulated WhatsApp message",
		zap.String("phone", phone),
		zap.Int("length", len(message)),
	)

	return &notify.SendResult{
		Recipient: phone,
		MessageID: "mock-wa-" + uuid.NewString(),
		Delivered: true,
	}, nil
}

// Sent returns the phone numbers messaged so far
func (s *MockWhatsAppSender) Sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.sent))
	copy(out, s.sent)
	return out
}

var (
	_ notify.WhatsAppSender = (*TwilioWhatsAppSender)(nil)
	_ notify.WhatsAppSender = (*MockWhatsAppSender)(nil)
)

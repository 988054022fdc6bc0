package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/netbill/backend/internal/domain/notify"
	"github.com/netbill/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewSMSSender selects the SMS provider from configuration
func NewSMSSender(cfg config.SMSConfig, logger *zap.Logger) notify.SMSSender {
	if cfg.Provider == "http" {
		return NewHTTPSMSSender(cfg, logger)
	}
	return NewMockSMSSender(logger)
}

// HTTPSMSSender delivers SMS through a JSON-over-HTTP provider API
type HTTPSMSSender struct {
	cfg        config.SMSConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPSMSSender creates an HTTP-backed SMS sender
func NewHTTPSMSSender(cfg config.SMSConfig, logger *zap.Logger) *HTTPSMSSender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPSMSSender{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type smsPayload struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Message string `json:"message"`
}

type smsResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
	Error     string `json:"error"`
}

// SendSMS posts one message to the provider
func (s *HTTPSMSSender) SendSMS(ctx context.Context, phone, message string) (*notify.SendResult, error) {
	body, err := json.Marshal(smsPayload{To: phone, From: s.cfg.SenderID, Message: message})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sms send: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed smsResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("sms send: decode response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return &notify.SendResult{
			Recipient: phone,
			Delivered: false,
			Error:     fmt.Sprintf("status %d: %s", resp.StatusCode, parsed.Error),
		}, nil
	}

	return &notify.SendResult{
		Recipient: phone,
		MessageID: parsed.MessageID,
		Delivered: true,
	}, nil
}

// MockSMSSender logs messages instead of delivering them
type MockSMSSender struct {
	logger *zap.Logger

	mu   sync.Mutex
	sent []string
}

// NewMockSMSSender creates a logging SMS sender for development
func NewMockSMSSender(logger *zap.Logger) *MockSMSSender {
	return &MockSMSSender{logger: logger}
}

// SendSMS records the message and reports success
func (s *MockSMSSender) SendSMS(ctx context.Context, phone, message string) (*notify.SendResult, error) {
	s.mu.Lock()
	s.sent = append(s.sent, phone)
	s.mu.Unlock()

	s.logger.Info("Simulated SMS",
		zap.String("phone", phone),
		zap.Int("length", len(message)),
	)

	return &notify.SendResult{
		Recipient: phone,
		MessageID: "mock-sms-" + uuid.NewString(),
		Delivered: true,
	}, nil
}

// Sent returns the phone numbers messaged so far
func (s *MockSMSSender) Sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.sent))
	copy(out, s.sent)
	return out
}

var (
	_ notify.SMSSender = (*HTTPSMSSender)(nil)
	_ notify.SMSSender = (*MockSMSSender)(nil)
)

// Package gateway implements the external provider adapters: mobile
// money, SMS, WhatsApp and the access router.
package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/netbill/backend/internal/domain/billing"
	"github.com/netbill/backend/internal/infrastructure/config"
	"github.com/netbill/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const (
	mpesaTokenPath   = "/oauth/v1/generate?grant_type=client_credentials"
	mpesaSTKPushPath = "/mpesa/stkpush/v1/processrequest"
	mpesaTimeLayout  = "20060102150405"
)

// MpesaAdapter implements MobileMoneyGateway against the Daraja API
type MpesaAdapter struct {
	cfg        config.MpesaConfig
	httpClient *http.Client
	logger     *zap.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewMpesaAdapter creates a new Daraja adapter
func NewMpesaAdapter(cfg config.MpesaConfig, logger *zap.Logger) *MpesaAdapter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &MpesaAdapter{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type mpesaTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

type stkPushPayload struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            string `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type stkPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
	ErrorMessage        string `json:"errorMessage"`
}

// InitiateSTKPush prompts the customer's phone to authorize a payment.
// The completed payment arrives later on the callback URL.
func (a *MpesaAdapter) InitiateSTKPush(ctx context.Context, req billing.STKPushRequest) (*billing.STKPushResponse, error) {
	token, err := a.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("mpesa auth: %w", err)
	}

	now := time.Now()
	timestamp := now.Format(mpesaTimeLayout)
	password := base64.StdEncoding.EncodeToString(
		[]byte(a.cfg.ShortCode + a.cfg.Passkey + timestamp),
	)

	// Daraja rejects fractional amounts
	payload := stkPushPayload{
		BusinessShortCode: a.cfg.ShortCode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            req.Amount.Round(0).String(),
		PartyA:            req.Phone,
		PartyB:            a.cfg.ShortCode,
		PhoneNumber:       req.Phone,
		CallBackURL:       a.cfg.CallbackURL,
		AccountReference:  req.AccountReference,
		TransactionDesc:   req.Description,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+mpesaSTKPushPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("mpesa stk push: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var pushResp stkPushResponse
	if err := json.Unmarshal(respBody, &pushResp); err != nil {
		return nil, fmt.Errorf("mpesa stk push: decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := pushResp.ErrorMessage
		if msg == "" {
			msg = string(respBody)
		}
		return nil, fmt.Errorf("mpesa stk push: status %d: %s", resp.StatusCode, msg)
	}
	if pushResp.ResponseCode != "0" {
		return nil, fmt.Errorf("mpesa stk push rejected: %s (code %s)", pushResp.ResponseDescription, pushResp.ResponseCode)
	}

	logger.WithTraceContext(ctx, a.logger).Info("STK push initiated",
		zap.String("checkout_request_id", pushResp.CheckoutRequestID),
		zap.String("account_reference", req.AccountReference),
	)

	return &billing.STKPushResponse{
		MerchantRequestID: pushResp.MerchantRequestID,
		CheckoutRequestID: pushResp.CheckoutRequestID,
		ResponseCode:      pushResp.ResponseCode,
		CustomerMessage:   pushResp.CustomerMessage,
	}, nil
}

// token returns a cached OAuth token, refreshing it when within a minute
// of expiry
func (a *MpesaAdapter) token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.accessToken != "" && time.Now().Add(time.Minute).Before(a.tokenExpiry) {
		return a.accessToken, nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.BaseURL+mpesaTokenPath, nil)
	if err != nil {
		return "", err
	}
	httpReq.SetBasicAuth(a.cfg.ConsumerKey, a.cfg.ConsumerSecret)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, body)
	}

	var tokenResp mpesaTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", err
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	// Daraja tokens last 3599 seconds; keep a conservative hour
	a.accessToken = tokenResp.AccessToken
	a.tokenExpiry = time.Now().Add(55 * time.Minute)

	return a.accessToken, nil
}

var _ billing.MobileMoneyGateway = (*MpesaAdapter)(nil)

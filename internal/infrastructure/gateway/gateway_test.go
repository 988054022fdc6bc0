package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/netbill/backend/internal/domain/network"
	"github.com/netbill/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/netbill/backend/internal/domain/billing"
)

func TestMpesaAdapter_InitiateSTKPush(t *testing.T) {
	var captured stkPushPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/oauth/v1/generate"):
			user, pass, ok := r.BasicAuth()
			require.True(t, ok)
			assert.Equal(t, "test-key", user)
			assert.Equal(t, "test-secret", pass)
			json.NewEncoder(w).Encode(mpesaTokenResponse{AccessToken: "token-abc", ExpiresIn: "3599"})
		case r.URL.Path == "/mpesa/stkpush/v1/processrequest":
			assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			json.NewEncoder(w).Encode(stkPushResponse{
				MerchantRequestID: "29115-34620561-1",
				CheckoutRequestID: "ws_CO_191220191020363925",
				ResponseCode:      "0",
				CustomerMessage:   "Success. Request accepted for processing",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	adapter := NewMpesaAdapter(config.MpesaConfig{
		BaseURL:        server.URL,
		ConsumerKey:    "test-key",
		ConsumerSecret: "test-secret",
		ShortCode:      "174379",
		Passkey:        "test-passkey",
		CallbackURL:    "https://example.com/webhook",
	}, zap.NewNop())

	resp, err := adapter.InitiateSTKPush(context.Background(), billing.STKPushRequest{
		Phone:            "254712345678",
		Amount:           decimal.RequireFromString("2500.75"),
		AccountReference: "john.doe",
		Description:      "Monthly subscription",
	})
	require.NoError(t, err)

	assert.Equal(t, "ws_CO_191220191020363925", resp.CheckoutRequestID)
	assert.Equal(t, "0", resp.ResponseCode)

	// Daraja rejects fractional amounts
	assert.Equal(t, "2501", captured.Amount)
	assert.Equal(t, "254712345678", captured.PhoneNumber)
	assert.Equal(t, "174379", captured.BusinessShortCode)
	assert.Equal(t, "CustomerPayBillOnline", captured.TransactionType)

	decoded, err := base64.StdEncoding.DecodeString(captured.Password)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(decoded), "174379test-passkey"))
	assert.True(t, strings.HasSuffix(string(decoded), captured.Timestamp))
}

func TestMpesaAdapter_RejectedPush(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/oauth/v1/generate") {
			json.NewEncoder(w).Encode(mpesaTokenResponse{AccessToken: "token-abc", ExpiresIn: "3599"})
			return
		}
		json.NewEncoder(w).Encode(stkPushResponse{
			ResponseCode:        "1032",
			ResponseDescription: "Request cancelled by user",
		})
	}))
	defer server.Close()

	adapter := NewMpesaAdapter(config.MpesaConfig{
		BaseURL:        server.URL,
		ConsumerKey:    "k",
		ConsumerSecret: "s",
		ShortCode:      "174379",
		Passkey:        "p",
	}, zap.NewNop())

	_, err := adapter.InitiateSTKPush(context.Background(), billing.STKPushRequest{
		Phone:  "254712345678",
		Amount: decimal.NewFromInt(100),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1032")
}

func TestMpesaAdapter_ReusesCachedToken(t *testing.T) {
	var tokenCalls int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/oauth/v1/generate") {
			tokenCalls++
			json.NewEncoder(w).Encode(mpesaTokenResponse{AccessToken: "token-abc", ExpiresIn: "3599"})
			return
		}
		json.NewEncoder(w).Encode(stkPushResponse{ResponseCode: "0", CheckoutRequestID: "ws_CO_1"})
	}))
	defer server.Close()

	adapter := NewMpesaAdapter(config.MpesaConfig{
		BaseURL:        server.URL,
		ConsumerKey:    "k",
		ConsumerSecret: "s",
		ShortCode:      "174379",
		Passkey:        "p",
	}, zap.NewNop())

	for i := 0; i < 3; i++ {
		_, err := adapter.InitiateSTKPush(context.Background(), billing.STKPushRequest{
			Phone:  "254712345678",
			Amount: decimal.NewFromInt(100),
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, tokenCalls)
}

func TestMockMpesaGateway_RecordsPushes(t *testing.T) {
	gw := NewMockMpesaGateway(zap.NewNop())

	resp, err := gw.InitiateSTKPush(context.Background(), billing.STKPushRequest{
		Phone:            "254712345678",
		Amount:           decimal.NewFromInt(1500),
		AccountReference: "jane",
	})
	require.NoError(t, err)

	assert.Equal(t, "0", resp.ResponseCode)
	assert.NotEmpty(t, resp.CheckoutRequestID)
	require.Len(t, gw.Pushes(), 1)
	assert.Equal(t, "jane", gw.Pushes()[0].AccountReference)
}

func TestHTTPSMSSender_SendSMS(t *testing.T) {
	var captured smsPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sms-api-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(smsResponse{MessageID: "msg-1", Status: "queued"})
	}))
	defer server.Close()

	sender := NewHTTPSMSSender(config.SMSConfig{
		BaseURL:  server.URL,
		APIKey:   "sms-api-key",
		SenderID: "NETBILL",
	}, zap.NewNop())

	result, err := sender.SendSMS(context.Background(), "254712345678", "Your invoice is ready")
	require.NoError(t, err)

	assert.True(t, result.Delivered)
	assert.Equal(t, "msg-1", result.MessageID)
	assert.Equal(t, "254712345678", captured.To)
	assert.Equal(t, "NETBILL", captured.From)
}

func TestHTTPSMSSender_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(smsResponse{Error: "invalid recipient"})
	}))
	defer server.Close()

	sender := NewHTTPSMSSender(config.SMSConfig{BaseURL: server.URL}, zap.NewNop())

	result, err := sender.SendSMS(context.Background(), "bad", "hello")
	require.NoError(t, err)

	assert.False(t, result.Delivered)
	assert.Contains(t, result.Error, "invalid recipient")
}

func TestTwilioWhatsAppSender_SendWhatsApp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "token", pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "whatsapp:+254712345678", r.PostFormValue("To"))
		assert.Equal(t, "whatsapp:+14155238886", r.PostFormValue("From"))

		json.NewEncoder(w).Encode(twilioMessageResponse{SID: "SM123", Status: "queued"})
	}))
	defer server.Close()

	sender := NewTwilioWhatsAppSender(config.WhatsAppConfig{
		BaseURL:    server.URL,
		AccountSID: "AC123",
		AuthToken:  "token",
		FromNumber: "+14155238886",
	}, zap.NewNop())

	result, err := sender.SendWhatsApp(context.Background(), "254712345678", "Payment received")
	require.NoError(t, err)

	assert.True(t, result.Delivered)
	assert.Equal(t, "SM123", result.MessageID)
}

func TestMockRouterClient_Lifecycle(t *testing.T) {
	router := NewMockRouterClient(zap.NewNop())
	ctx := context.Background()

	err := router.CreateUser(ctx, network.RouterUser{
		Username: "john.doe",
		Password: "secret",
		Profile:  "plan-10M",
	})
	require.NoError(t, err)

	err = router.CreateUser(ctx, network.RouterUser{Username: "john.doe"})
	assert.Error(t, err)

	require.NoError(t, router.DisableUser(ctx, "john.doe"))
	user, ok := router.User("john.doe")
	require.True(t, ok)
	assert.True(t, user.Disabled)

	require.NoError(t, router.EnableUser(ctx, "john.doe"))
	user, _ = router.User("john.doe")
	assert.False(t, user.Disabled)

	require.NoError(t, router.RemoveUser(ctx, "john.doe"))
	_, ok = router.User("john.doe")
	assert.False(t, ok)

	assert.Error(t, router.DisableUser(ctx, "nobody"))
}

func TestMockRouterClient_FetchUsageSkipsDisabled(t *testing.T) {
	router := NewMockRouterClient(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, router.CreateUser(ctx, network.RouterUser{Username: "active.user"}))
	require.NoError(t, router.CreateUser(ctx, network.RouterUser{Username: "cut.off"}))
	require.NoError(t, router.DisableUser(ctx, "cut.off"))

	samples, err := router.FetchUsage(ctx)
	require.NoError(t, err)

	require.Len(t, samples, 1)
	assert.Equal(t, "active.user", samples[0].Username)
}

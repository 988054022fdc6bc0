package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/netbill/backend/internal/domain/shared"
	"github.com/netbill/backend/internal/domain/subscriber"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fakeClientRepository resolves phone lookups for webhook tests
type fakeClientRepository struct {
	byPhone map[string]*subscriber.Client
}

func (f *fakeClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*subscriber.Client, error) {
	return nil, shared.ErrNotFound
}

func (f *fakeClientRepository) FindByUsername(ctx context.Context, username string) (*subscriber.Client, error) {
	return nil, shared.ErrNotFound
}

func (f *fakeClientRepository) FindByPhone(ctx context.Context, phone string) (*subscriber.Client, error) {
	client, ok := f.byPhone[phone]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return client, nil
}

func (f *fakeClientRepository) FindAll(ctx context.Context, filter shared.Filter) ([]subscriber.Client, int64, error) {
	return nil, 0, nil
}

func (f *fakeClientRepository) FindByStatus(ctx context.Context, status subscriber.ClientStatus, filter shared.Filter) ([]subscriber.Client, error) {
	return nil, nil
}

func (f *fakeClientRepository) FindByPlan(ctx context.Context, planID uuid.UUID) ([]subscriber.Client, error) {
	return nil, nil
}

func (f *fakeClientRepository) FindDueForPayment(ctx context.Context, by time.Time) ([]subscriber.Client, error) {
	return nil, nil
}

func (f *fakeClientRepository) Save(ctx context.Context, client *subscriber.Client) error {
	return nil
}

func (f *fakeClientRepository) SaveWithLock(ctx context.Context, client *subscriber.Client) error {
	return nil
}

func (f *fakeClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (f *fakeClientRepository) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func (f *fakeClientRepository) CountActive(ctx context.Context) (int64, error) {
	return 0, nil
}

func setupWebhookRouter(repo *fakeClientRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	handler := NewMpesaWebhookHandler(nil, repo, zap.NewNop())
	handler.RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func postCallback(engine *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/mpesa", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	return w
}

func TestMpesaWebhook_AcknowledgesCancelledPrompt(t *testing.T) {
	engine := setupWebhookRouter(&fakeClientRepository{})

	w := postCallback(engine, `{
		"Body": {"stkCallback": {
			"MerchantRequestID": "29115-34620561-1",
			"CheckoutRequestID": "ws_CO_191220191020363925",
			"ResultCode": 1032,
			"ResultDesc": "Request cancelled by user"
		}}
	}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ResultCode":0`)
}

func TestMpesaWebhook_RejectsMalformedBody(t *testing.T) {
	engine := setupWebhookRouter(&fakeClientRepository{})

	w := postCallback(engine, `{not json`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMpesaWebhook_AcknowledgesUnknownPhone(t *testing.T) {
	engine := setupWebhookRouter(&fakeClientRepository{byPhone: map[string]*subscriber.Client{}})

	// Unknown payer phone is acknowledged so Daraja does not retry a
	// callback that can never succeed.
	w := postCallback(engine, `{
		"Body": {"stkCallback": {
			"MerchantRequestID": "29115-34620561-1",
			"CheckoutRequestID": "ws_CO_191220191020363925",
			"ResultCode": 0,
			"ResultDesc": "Success",
			"CallbackMetadata": {"Item": [
				{"Name": "Amount", "Value": 2500},
				{"Name": "MpesaReceiptNumber", "Value": "QGH7TK61SU"},
				{"Name": "PhoneNumber", "Value": 254700111222}
			]}
		}}
	}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ResultCode":0`)
}

func TestMpesaWebhook_AcknowledgesMissingReceipt(t *testing.T) {
	engine := setupWebhookRouter(&fakeClientRepository{})

	w := postCallback(engine, `{
		"Body": {"stkCallback": {
			"ResultCode": 0,
			"ResultDesc": "Success",
			"CallbackMetadata": {"Item": [
				{"Name": "Amount", "Value": 2500}
			]}
		}}
	}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ResultCode":0`)
}

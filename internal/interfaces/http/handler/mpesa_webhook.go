package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	billingapp "github.com/netbill/backend/internal/application/billing"
	"github.com/netbill/backend/internal/domain/notify"
	"github.com/netbill/backend/internal/domain/shared"
	"github.com/netbill/backend/internal/domain/subscriber"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MpesaWebhookHandler receives Daraja STK push result callbacks. The
// endpoint is unauthenticated; Daraja cannot send a bearer token.
type MpesaWebhookHandler struct {
	paymentService *billingapp.PaymentService
	clientRepo     subscriber.ClientRepository
	logger         *zap.Logger
}

// NewMpesaWebhookHandler creates a new MpesaWebhookHandler
func NewMpesaWebhookHandler(paymentService *billingapp.PaymentService, clientRepo subscriber.ClientRepository, logger *zap.Logger) *MpesaWebhookHandler {
	return &MpesaWebhookHandler{
		paymentService: paymentService,
		clientRepo:     clientRepo,
		logger:         logger,
	}
}

// RegisterRoutes mounts the webhook endpoint
func (h *MpesaWebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/mpesa", h.Callback)
}

type stkCallbackEnvelope struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  struct {
				Item []struct {
					Name  string          `json:"Name"`
					Value json.RawMessage `json:"Value"`
				} `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

type callbackAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

// Callback processes one STK push result. Daraja retries on any
// non-zero acknowledgement, so processing failures that retrying
// cannot fix are still acknowledged with zero and only logged.
func (h *MpesaWebhookHandler) Callback(c *gin.Context) {
	var envelope stkCallbackEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		h.logger.Warn("Malformed gateway callback", zap.Error(err))
		c.JSON(http.StatusBadRequest, callbackAck{ResultCode: 1, ResultDesc: "Malformed request"})
		return
	}

	cb := envelope.Body.StkCallback
	log := h.logger.With(
		zap.String("merchant_request_id", cb.MerchantRequestID),
		zap.String("checkout_request_id", cb.CheckoutRequestID),
	)

	if cb.ResultCode != 0 {
		log.Info("Payment prompt not completed",
			zap.Int("result_code", cb.ResultCode),
			zap.String("result_desc", cb.ResultDesc),
		)
		c.JSON(http.StatusOK, callbackAck{ResultCode: 0, ResultDesc: "Accepted"})
		return
	}

	var (
		amount  decimal.Decimal
		receipt string
		phone   string
	)
	for _, item := range cb.CallbackMetadata.Item {
		switch item.Name {
		case "Amount":
			_ = json.Unmarshal(item.Value, &amount)
		case "MpesaReceiptNumber":
			_ = json.Unmarshal(item.Value, &receipt)
		case "PhoneNumber":
			var raw json.Number
			if err := json.Unmarshal(item.Value, &raw); err == nil {
				phone = raw.String()
			} else {
				_ = json.Unmarshal(item.Value, &phone)
			}
		}
	}

	if receipt == "" || amount.IsZero() {
		log.Warn("Callback missing receipt or amount")
		c.JSON(http.StatusOK, callbackAck{ResultCode: 0, ResultDesc: "Accepted"})
		return
	}

	normalized, err := notify.NormalizeKenyanPhone(phone)
	if err != nil {
		log.Warn("Callback carries unusable phone number", zap.String("phone", phone))
		c.JSON(http.StatusOK, callbackAck{ResultCode: 0, ResultDesc: "Accepted"})
		return
	}

	client, err := h.clientRepo.FindByPhone(c.Request.Context(), normalized)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			log.Warn("No client matches paying phone", zap.String("phone", normalized))
			c.JSON(http.StatusOK, callbackAck{ResultCode: 0, ResultDesc: "Accepted"})
			return
		}
		// Transient failure: a non-zero ack makes Daraja retry later.
		log.Error("Client lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, callbackAck{ResultCode: 1, ResultDesc: "Retry"})
		return
	}

	result, err := h.paymentService.Record(c.Request.Context(), billingapp.RecordPaymentRequest{
		ClientID:      client.ID,
		Amount:        amount,
		Method:        "mpesa",
		TransactionID: receipt,
		Notes:         "M-Pesa STK push",
	})
	if err != nil {
		log.Error("Gateway payment posting failed",
			zap.String("receipt", receipt),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, callbackAck{ResultCode: 1, ResultDesc: "Retry"})
		return
	}

	log.Info("Gateway payment recorded",
		zap.String("receipt", receipt),
		zap.String("client_id", client.ID.String()),
		zap.Bool("duplicate", result.Duplicate),
	)
	c.JSON(http.StatusOK, callbackAck{ResultCode: 0, ResultDesc: "Accepted"})
}

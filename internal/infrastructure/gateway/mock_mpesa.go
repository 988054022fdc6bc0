package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/netbill/backend/internal/domain/billing"
	"go.uber.org/zap"
)

// MockMpesaGateway simulates the Daraja API for development and demo
// environments. Every push is acknowledged immediately.
type MockMpesaGateway struct {
	logger *zap.Logger

	mu     sync.Mutex
	pushes []billing.STKPushRequest
}

// NewMockMpesaGateway creates a simulated mobile money gateway
func NewMockMpesaGateway(logger *zap.Logger) *MockMpesaGateway {
	return &MockMpesaGateway{logger: logger}
}

// InitiateSTKPush records the request and fabricates an acknowledgement
func (g *MockMpesaGateway) InitiateSTKPush(ctx context.Context, req billing.STKPushRequest) (*billing.STKPushResponse, error) {
	g.mu.Lock()
	g.pushes = append(g.pushes, req)
	seq := len(g.pushes)
	g.mu.Unlock()

	g.logger.Info("Simulated STK push",
		zap.String("phone", req.Phone),
		zap.String("amount", req.Amount.String()),
		zap.String("account_reference", req.AccountReference),
	)

	stamp := time.Now().Format("20060102150405")
	return &billing.STKPushResponse{
		MerchantRequestID: fmt.Sprintf("mock-merchant-%s-%d", stamp, seq),
		CheckoutRequestID: fmt.Sprintf("ws_CO_%s%d", stamp, seq),
		ResponseCode:      "0",
		CustomerMessage:   "Success. Request accepted for processing",
	}, nil
}

// Pushes returns the recorded push requests
func (g *MockMpesaGateway) Pushes() []billing.STKPushRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]billing.STKPushRequest, len(g.pushes))
	copy(out, g.pushes)
	return out
}

var _ billing.MobileMoneyGateway = (*MockMpesaGateway)(nil)

package billing

import (
	"context"

	"github.com/shopspring/decimal"
)

// STKPushRequest asks the mobile money provider to prompt a customer
type STKPushRequest struct {
	Phone            string
	Amount           decimal.Decimal
	AccountReference string
	Description      string
}

// STKPushResponse is the provider's acknowledgement of a push request
type STKPushResponse struct {
	MerchantRequestID string
	CheckoutRequestID string
	ResponseCode      string
	CustomerMessage   string
}

// MobileMoneyGateway initiates customer payment prompts. Completed
// payments arrive asynchronously through the webhook endpoint.
type MobileMoneyGateway interface {
	InitiateSTKPush(ctx context.Context, req STKPushRequest) (*STKPushResponse, error)
}

// IdempotencyStore remembers processed gateway transaction IDs so webhook
// retries do not double-post payments. A nil-safe implementation backed
// by Redis serves production; an in-memory one serves tests.
type IdempotencyStore interface {
	// MarkProcessed records a transaction ID; it returns false when the ID
	// was already present.
	MarkProcessed(ctx context.Context, transactionID string) (bool, error)
	// Release forgets a transaction ID after a failed attempt so the
	// gateway's retry can succeed.
	Release(ctx context.Context, transactionID string) error
}

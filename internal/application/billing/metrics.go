package billing

import (
	"context"

	"github.com/shopspring/decimal"
)

// ActivityRecorder receives billing activity for instrumentation.
// Implementations must be safe for concurrent use.
type ActivityRecorder interface {
	RecordInvoiceIssued(ctx context.Context, amount decimal.Decimal)
	RecordPayment(ctx context.Context, method string, amount decimal.Decimal, succeeded bool)
}

package subscriber

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/netbill/backend/internal/domain/shared"
)

// ClientRepository defines persistence operations for clients
type ClientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)
	FindByUsername(ctx context.Context, username string) (*Client, error)
	// FindByPhone matches the normalized 254XXXXXXXXX form; gateway
	// callbacks identify payers by phone number only.
	FindByPhone(ctx context.Context, phone string) (*Client, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Client, int64, error)
	FindByStatus(ctx context.Context, status ClientStatus, filter shared.Filter) ([]Client, error)
	FindByPlan(ctx context.Context, planID uuid.UUID) ([]Client, error)
	FindDueForPayment(ctx context.Context, by time.Time) ([]Client, error)
	Save(ctx context.Context, client *Client) error
	// SaveWithLock persists the client guarded by its aggregate version,
	// returning shared.ErrConcurrencyConflict when the row moved underneath.
	SaveWithLock(ctx context.Context, client *Client) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	CountActive(ctx context.Context) (int64, error)
}

// NetworkUsageRepository defines persistence operations for usage records
type NetworkUsageRepository interface {
	Upsert(ctx context.Context, usage *NetworkUsage) error
	FindByClient(ctx context.Context, clientID uuid.UUID, from, to time.Time) ([]NetworkUsage, error)
	TotalsSince(ctx context.Context, since time.Time) (download, upload int64, err error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

package network

import (
	"context"
	"time"
)

// RouterUser is a provisioned credential on the access router
type RouterUser struct {
	Username string
	Password string
	Profile  string // Router profile matching the service plan speed
	Disabled bool
}

// UsageSample is one client's traffic counters read from the router
type UsageSample struct {
	Username      string
	DownloadBytes int64
	UploadBytes   int64
	SampledAt     time.Time
}

// RouterResources is a snapshot of the router's health counters
type RouterResources struct {
	Uptime      string
	Version     string
	BoardName   string
	CPULoad     int
	FreeMemory  int64
	TotalMemory int64
}

// RouterClient provisions and controls subscriber access on the router.
// Failures here are reported but never roll back billing state; the
// network is reconciled separately from the ledger.
type RouterClient interface {
	CreateUser(ctx context.Context, user RouterUser) error
	EnableUser(ctx context.Context, username string) error
	DisableUser(ctx context.Context, username string) error
	RemoveUser(ctx context.Context, username string) error
	FetchUsage(ctx context.Context) ([]UsageSample, error)
	Resources(ctx context.Context) (*RouterResources, error)
	Ping(ctx context.Context) error
}

package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/netbill/backend/internal/domain/network"
	"go.uber.org/zap"
)

// MockRouterClient keeps provisioned users in memory and fabricates
// usage counters. It stands in for a MikroTik router in development
// and tests.
type MockRouterClient struct {
	logger *zap.Logger

	mu    sync.Mutex
	users map[string]*network.RouterUser
	usage map[string]*mockCounters
}

type mockCounters struct {
	downloadBytes int64
	uploadBytes   int64
}

// NewMockRouterClient creates an in-memory router
func NewMockRouterClient(logger *zap.Logger) *MockRouterClient {
	return &MockRouterClient{
		logger: logger,
		users:  make(map[string]*network.RouterUser),
		usage:  make(map[string]*mockCounters),
	}
}

// CreateUser registers a credential on the router
func (r *MockRouterClient) CreateUser(ctx context.Context, user network.RouterUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Username]; ok {
		return fmt.Errorf("router user %s already exists", user.Username)
	}
	u := user
	r.users[user.Username] = &u
	r.usage[user.Username] = &mockCounters{}

	r.logger.Info("Simulated router user created",
		zap.String("username", user.Username),
		zap.String("profile", user.Profile),
	)
	return nil
}

// EnableUser re-enables a disabled credential
func (r *MockRouterClient) EnableUser(ctx context.Context, username string) error {
	return r.setDisabled(username, false)
}

// DisableUser cuts off a credential without removing it
func (r *MockRouterClient) DisableUser(ctx context.Context, username string) error {
	return r.setDisabled(username, true)
}

func (r *MockRouterClient) setDisabled(username string, disabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[username]
	if !ok {
		return fmt.Errorf("router user %s not found", username)
	}
	user.Disabled = disabled

	r.logger.Info("Simulated router user state change",
		zap.String("username", username),
		zap.Bool("disabled", disabled),
	)
	return nil
}

// RemoveUser deletes a credential and its counters
func (r *MockRouterClient) RemoveUser(ctx context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[username]; !ok {
		return fmt.Errorf("router user %s not found", username)
	}
	delete(r.users, username)
	delete(r.usage, username)

	r.logger.Info("Simulated router user removed", zap.String("username", username))
	return nil
}

// FetchUsage returns counters for every enabled user, advancing each
// by a random increment so repeated polls look like live traffic.
func (r *MockRouterClient) FetchUsage(ctx context.Context) ([]network.UsageSample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	samples := make([]network.UsageSample, 0, len(r.users))
	for username, user := range r.users {
		if user.Disabled {
			continue
		}
		counters := r.usage[username]
		counters.downloadBytes += rand.Int63n(500 << 20)
		counters.uploadBytes += rand.Int63n(50 << 20)
		samples = append(samples, network.UsageSample{
			Username:      username,
			DownloadBytes: counters.downloadBytes,
			UploadBytes:   counters.uploadBytes,
			SampledAt:     now,
		})
	}
	return samples, nil
}

// Resources returns fabricated but stable health counters
func (r *MockRouterClient) Resources(ctx context.Context) (*network.RouterResources, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return &network.RouterResources{
		Uptime:      "4w2d13h",
		Version:     "7.14.2 (stable)",
		BoardName:   "CCR2004-1G-12S+2XS",
		CPULoad:     3 + rand.Intn(10),
		FreeMemory:  2_800_000_000,
		TotalMemory: 4_294_967_296,
	}, nil
}

// Ping always succeeds
func (r *MockRouterClient) Ping(ctx context.Context) error {
	return nil
}

// User returns the stored credential, for tests
func (r *MockRouterClient) User(username string) (network.RouterUser, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[username]
	if !ok {
		return network.RouterUser{}, false
	}
	return *user, true
}

var _ network.RouterClient = (*MockRouterClient)(nil)

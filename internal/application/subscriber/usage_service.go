package subscriber

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/netbill/backend/internal/domain/network"
	"github.com/netbill/backend/internal/domain/shared"
	"github.com/netbill/backend/internal/domain/subscriber"
	"go.uber.org/zap"
)

// UsageService records and reports per-client network usage
type UsageService struct {
	usageRepo  subscriber.NetworkUsageRepository
	clientRepo subscriber.ClientRepository
	router     network.RouterClient
	logger     *zap.Logger
}

// NewUsageService creates a new UsageService
func NewUsageService(usageRepo subscriber.NetworkUsageRepository, clientRepo subscriber.ClientRepository, router network.RouterClient, logger *zap.Logger) *UsageService {
	return &UsageService{
		usageRepo:  usageRepo,
		clientRepo: clientRepo,
		router:     router,
		logger:     logger,
	}
}

// Record upserts one day's counters for a client
func (s *UsageService) Record(ctx context.Context, clientID uuid.UUID, day time.Time, download, upload int64) error {
	if _, err := s.clientRepo.FindByID(ctx, clientID); err != nil {
		return err
	}

	usage, err := subscriber.NewNetworkUsage(clientID, day, download, upload)
	if err != nil {
		return err
	}
	return s.usageRepo.Upsert(ctx, usage)
}

// ClientUsage lists a client's daily usage over a date range
func (s *UsageService) ClientUsage(ctx context.Context, clientID uuid.UUID, from, to time.Time) ([]UsageResponse, error) {
	records, err := s.usageRepo.FindByClient(ctx, clientID, from, to)
	if err != nil {
		return nil, err
	}

	responses := make([]UsageResponse, 0, len(records))
	for i := range records {
		responses = append(responses, ToUsageResponse(&records[i]))
	}
	return responses, nil
}

// SyncFromRouter polls the router's traffic counters and upserts today's
// usage row for every known username. Unknown usernames are skipped.
func (s *UsageService) SyncFromRouter(ctx context.Context) (int, error) {
	samples, err := s.router.FetchUsage(ctx)
	if err != nil {
		return 0, err
	}

	day := time.Now().Truncate(24 * time.Hour)
	synced := 0
	for _, sample := range samples {
		client, err := s.clientRepo.FindByUsername(ctx, sample.Username)
		if err != nil {
			if err == shared.ErrNotFound {
				continue
			}
			return synced, err
		}

		usage, err := subscriber.NewNetworkUsage(client.ID, day, sample.DownloadBytes, sample.UploadBytes)
		if err != nil {
			s.logger.Warn("bad usage sample from router",
				zap.String("username", sample.Username),
				zap.Error(err))
			continue
		}
		if err := s.usageRepo.Upsert(ctx, usage); err != nil {
			return synced, err
		}
		synced++
	}

	s.logger.Info("usage sync finished", zap.Int("synced", synced))
	return synced, nil
}

// PruneOld deletes usage rows older than the retention cutoff
func (s *UsageService) PruneOld(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return s.usageRepo.DeleteOlderThan(ctx, cutoff)
}

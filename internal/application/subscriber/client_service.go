package subscriber

import (
	"context"

	"github.com/google/uuid"
	"github.com/netbill/backend/internal/domain/catalog"
	"github.com/netbill/backend/internal/domain/network"
	"github.com/netbill/backend/internal/domain/notify"
	"github.com/netbill/backend/internal/domain/shared"
	"github.com/netbill/backend/internal/domain/subscriber"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ClientService handles subscriber lifecycle operations
type ClientService struct {
	clientRepo subscriber.ClientRepository
	planRepo   catalog.ServicePlanRepository
	router     network.RouterClient
	logger     *zap.Logger
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo subscriber.ClientRepository, planRepo catalog.ServicePlanRepository, router network.RouterClient, logger *zap.Logger) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		planRepo:   planRepo,
		router:     router,
		logger:     logger,
	}
}

// Register creates a new subscriber account and provisions it on the
// router. The account is saved first; a router failure only produces a
// warning in the result.
func (s *ClientService) Register(ctx context.Context, req RegisterClientRequest) (*RegisterClientResult, error) {
	phone, err := notify.NormalizeKenyanPhone(req.Phone)
	if err != nil {
		return nil, err
	}

	existing, err := s.clientRepo.FindByUsername(ctx, req.Username)
	if err != nil && err != shared.ErrNotFound {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Client with this username already exists")
	}

	var planPrice decimal.Decimal
	var planSpeed string
	if req.ServicePlanID != nil {
		plan, err := s.planRepo.FindByID(ctx, *req.ServicePlanID)
		if err != nil {
			return nil, err
		}
		if !plan.IsActive {
			return nil, shared.NewDomainError("PLAN_INACTIVE", "Plan is not available for new registrations")
		}
		planPrice = plan.Price
		planSpeed = plan.Speed
	}

	client, err := subscriber.NewClient(req.Name, phone, req.Username, req.Password, subscriber.ConnectionType(req.ConnectionType), req.ServicePlanID, req.MonthlyFee, planPrice)
	if err != nil {
		return nil, err
	}
	client.Email = req.Email
	client.IDNumber = req.IDNumber
	client.Address = req.Address
	client.Latitude = req.Latitude
	client.Longitude = req.Longitude

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}

	result := &RegisterClientResult{Client: ToClientResponse(client)}

	if err := s.router.CreateUser(ctx, network.RouterUser{
		Username: client.Username,
		Password: client.Password,
		Profile:  planSpeed,
	}); err != nil {
		s.logger.Warn("router provisioning failed, account saved without network access",
			zap.String("username", client.Username),
			zap.Error(err))
		result.RouterWarning = "Account created but router provisioning failed: " + err.Error()
	}

	return result, nil
}

// GetByID retrieves a client by ID
func (s *ClientService) GetByID(ctx context.Context, clientID uuid.UUID) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	response := ToClientResponse(client)
	return &response, nil
}

// List retrieves clients with filtering and pagination
func (s *ClientService) List(ctx context.Context, filter ClientListFilter) (*shared.Paginated[ClientResponse], error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	f.Search = filter.Search
	if filter.Status != "" {
		f.Filters = map[string]interface{}{"status": filter.Status}
	}

	clients, total, err := s.clientRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}

	responses := make([]ClientResponse, 0, len(clients))
	for i := range clients {
		responses = append(responses, ToClientResponse(&clients[i]))
	}

	page := shared.NewPaginated(responses, total, f.Page, f.PageSize)
	return &page, nil
}

// Update updates a client's profile and billing fields
func (s *ClientService) Update(ctx context.Context, clientID uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	phone, err := notify.NormalizeKenyanPhone(req.Phone)
	if err != nil {
		return nil, err
	}

	if req.ServicePlanID != nil && (client.ServicePlanID == nil || *client.ServicePlanID != *req.ServicePlanID) {
		if _, err := s.planRepo.FindByID(ctx, *req.ServicePlanID); err != nil {
			return nil, err
		}
	}

	client.Name = req.Name
	client.Email = req.Email
	client.Phone = phone
	client.IDNumber = req.IDNumber
	client.Address = req.Address
	client.ServicePlanID = req.ServicePlanID
	client.Latitude = req.Latitude
	client.Longitude = req.Longitude
	if req.MonthlyFee != nil {
		client.MonthlyFee = *req.MonthlyFee
	}

	if err := s.clientRepo.SaveWithLock(ctx, client); err != nil {
		return nil, err
	}

	response := ToClientResponse(client)
	return &response, nil
}

// Suspend cuts a client's service for non-payment
func (s *ClientService) Suspend(ctx context.Context, clientID uuid.UUID) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if err := client.Suspend(); err != nil {
		return nil, err
	}
	if err := s.clientRepo.SaveWithLock(ctx, client); err != nil {
		return nil, err
	}

	if err := s.router.DisableUser(ctx, client.Username); err != nil {
		s.logger.Warn("router disable failed",
			zap.String("username", client.Username),
			zap.Error(err))
	}

	response := ToClientResponse(client)
	return &response, nil
}

// Reactivate restores a client's service
func (s *ClientService) Reactivate(ctx context.Context, clientID uuid.UUID) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	client.Reactivate()
	if err := s.clientRepo.SaveWithLock(ctx, client); err != nil {
		return nil, err
	}

	if err := s.router.EnableUser(ctx, client.Username); err != nil {
		s.logger.Warn("router enable failed",
			zap.String("username", client.Username),
			zap.Error(err))
	}

	response := ToClientResponse(client)
	return &response, nil
}

// Deactivate soft-deletes a client and removes its router account
func (s *ClientService) Deactivate(ctx context.Context, clientID uuid.UUID) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	client.Deactivate()
	if err := s.clientRepo.SaveWithLock(ctx, client); err != nil {
		return nil, err
	}

	if err := s.router.RemoveUser(ctx, client.Username); err != nil {
		s.logger.Warn("router remove failed",
			zap.String("username", client.Username),
			zap.Error(err))
	}

	response := ToClientResponse(client)
	return &response, nil
}

// SuspendOverdue suspends every active client owing more than one
// monthly fee. It returns the number of clients suspended.
func (s *ClientService) SuspendOverdue(ctx context.Context) (int, error) {
	clients, err := s.clientRepo.FindByStatus(ctx, subscriber.ClientStatusActive, shared.Filter{Page: 1, PageSize: 10000})
	if err != nil {
		return 0, err
	}

	suspended := 0
	for i := range clients {
		c := &clients[i]
		if c.BalanceStatus() != subscriber.BalanceStatusOverdue {
			continue
		}
		if err := c.Suspend(); err != nil {
			continue
		}
		if err := s.clientRepo.SaveWithLock(ctx, c); err != nil {
			s.logger.Warn("suspend save failed", zap.String("client_id", c.ID.String()), zap.Error(err))
			continue
		}
		if err := s.router.DisableUser(ctx, c.Username); err != nil {
			s.logger.Warn("router disable failed", zap.String("username", c.Username), zap.Error(err))
		}
		suspended++
	}

	s.logger.Info("overdue sweep finished", zap.Int("suspended", suspended))
	return suspended, nil
}

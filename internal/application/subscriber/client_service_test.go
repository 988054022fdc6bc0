package subscriber

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/netbill/backend/internal/domain/catalog"
	"github.com/netbill/backend/internal/domain/network"
	"github.com/netbill/backend/internal/domain/shared"
	"github.com/netbill/backend/internal/domain/subscriber"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockClientRepository is a mock implementation of subscriber.ClientRepository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*subscriber.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscriber.Client), args.Error(1)
}

func (m *MockClientRepository) FindByUsername(ctx context.Context, username string) (*subscriber.Client, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscriber.Client), args.Error(1)
}

func (m *MockClientRepository) FindByPhone(ctx context.Context, phone string) (*subscriber.Client, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscriber.Client), args.Error(1)
}

func (m *MockClientRepository) FindAll(ctx context.Context, filter shared.Filter) ([]subscriber.Client, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]subscriber.Client), args.Get(1).(int64), args.Error(2)
}

func (m *MockClientRepository) FindByStatus(ctx context.Context, status subscriber.ClientStatus, filter shared.Filter) ([]subscriber.Client, error) {
	args := m.Called(ctx, status, filter)
	return args.Get(0).([]subscriber.Client), args.Error(1)
}

func (m *MockClientRepository) FindByPlan(ctx context.Context, planID uuid.UUID) ([]subscriber.Client, error) {
	args := m.Called(ctx, planID)
	return args.Get(0).([]subscriber.Client), args.Error(1)
}

func (m *MockClientRepository) FindDueForPayment(ctx context.Context, by time.Time) ([]subscriber.Client, error) {
	args := m.Called(ctx, by)
	return args.Get(0).([]subscriber.Client), args.Error(1)
}

func (m *MockClientRepository) Save(ctx context.Context, client *subscriber.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) SaveWithLock(ctx context.Context, client *subscriber.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockClientRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockClientRepository) CountActive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockPlanRepository is a mock implementation of catalog.ServicePlanRepository
type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ServicePlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ServicePlan), args.Error(1)
}

func (m *MockPlanRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.ServicePlan, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.ServicePlan), args.Error(1)
}

func (m *MockPlanRepository) FindActive(ctx context.Context) ([]catalog.ServicePlan, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.ServicePlan), args.Error(1)
}

func (m *MockPlanRepository) Save(ctx context.Context, plan *catalog.ServicePlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPlanRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPlanRepository) CountClients(ctx context.Context, planID uuid.UUID) (int64, error) {
	args := m.Called(ctx, planID)
	return args.Get(0).(int64), args.Error(1)
}

// MockRouterClient is a mock implementation of network.RouterClient
type MockRouterClient struct {
	mock.Mock
}

func (m *MockRouterClient) CreateUser(ctx context.Context, user network.RouterUser) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRouterClient) EnableUser(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *MockRouterClient) DisableUser(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *MockRouterClient) RemoveUser(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *MockRouterClient) FetchUsage(ctx context.Context) ([]network.UsageSample, error) {
	args := m.Called(ctx)
	return args.Get(0).([]network.UsageSample), args.Error(1)
}

func (m *MockRouterClient) Resources(ctx context.Context) (*network.RouterResources, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*network.RouterResources), args.Error(1)
}

func (m *MockRouterClient) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func newClientServiceFixture() (*ClientService, *MockClientRepository, *MockPlanRepository, *MockRouterClient) {
	clients := new(MockClientRepository)
	plans := new(MockPlanRepository)
	router := new(MockRouterClient)
	svc := NewClientService(clients, plans, router, zap.NewNop())
	return svc, clients, plans, router
}

func registerRequest() RegisterClientRequest {
	return RegisterClientRequest{
		Name:           "John Kamau",
		Phone:          "0712345678",
		ConnectionType: "pppoe",
		Username:       "jkamau",
		Password:       "routerpw",
		MonthlyFee:     decimal.NewFromFloat(2500.00),
	}
}

func TestClientService_Register(t *testing.T) {
	svc, clients, _, router := newClientServiceFixture()

	clients.On("FindByUsername", mock.Anything, "jkamau").Return(nil, shared.ErrNotFound)
	clients.On("Save", mock.Anything, mock.AnythingOfType("*subscriber.Client")).Return(nil)
	router.On("CreateUser", mock.Anything, mock.MatchedBy(func(u network.RouterUser) bool {
		return u.Username == "jkamau" && u.Password == "routerpw"
	})).Return(nil)

	result, err := svc.Register(context.Background(), registerRequest())

	require.NoError(t, err)
	assert.Empty(t, result.RouterWarning)
	assert.Equal(t, "254712345678", result.Client.Phone)
	assert.Equal(t, "active", result.Client.Status)
}

func TestClientService_Register_RouterFailureIsWarningOnly(t *testing.T) {
	svc, clients, _, router := newClientServiceFixture()

	clients.On("FindByUsername", mock.Anything, "jkamau").Return(nil, shared.ErrNotFound)
	clients.On("Save", mock.Anything, mock.AnythingOfType("*subscriber.Client")).Return(nil)
	router.On("CreateUser", mock.Anything, mock.Anything).Return(errors.New("router unreachable"))

	result, err := svc.Register(context.Background(), registerRequest())

	require.NoError(t, err)
	assert.Contains(t, result.RouterWarning, "router unreachable")
	clients.AssertCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestClientService_Register_DuplicateUsername(t *testing.T) {
	svc, clients, _, _ := newClientServiceFixture()
	existing, err := subscriber.NewClient("Other", "254700000000", "jkamau", "pw", subscriber.ConnectionTypePPPoE, nil, decimal.NewFromFloat(1000), decimal.Zero)
	require.NoError(t, err)

	clients.On("FindByUsername", mock.Anything, "jkamau").Return(existing, nil)

	_, err = svc.Register(context.Background(), registerRequest())

	assert.Error(t, err)
	clients.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestClientService_Register_FeeDefaultsFromPlan(t *testing.T) {
	svc, clients, plans, router := newClientServiceFixture()

	plan, err := catalog.NewServicePlan("Home Basic", catalog.PlanTypePPPoE, decimal.NewFromFloat(3000.00), "")
	require.NoError(t, err)
	planID := plan.ID

	req := registerRequest()
	req.ServicePlanID = &planID
	req.MonthlyFee = decimal.Zero

	clients.On("FindByUsername", mock.Anything, "jkamau").Return(nil, shared.ErrNotFound)
	plans.On("FindByID", mock.Anything, planID).Return(plan, nil)
	clients.On("Save", mock.Anything, mock.AnythingOfType("*subscriber.Client")).Return(nil)
	router.On("CreateUser", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.Register(context.Background(), req)

	require.NoError(t, err)
	assert.True(t, result.Client.MonthlyFee.Equal(decimal.NewFromFloat(3000.00)))
}

func TestClientService_Register_InactivePlanRejected(t *testing.T) {
	svc, clients, plans, _ := newClientServiceFixture()

	plan, err := catalog.NewServicePlan("Legacy", catalog.PlanTypePPPoE, decimal.NewFromFloat(1500), "")
	require.NoError(t, err)
	plan.Deactivate()
	planID := plan.ID

	req := registerRequest()
	req.ServicePlanID = &planID

	clients.On("FindByUsername", mock.Anything, "jkamau").Return(nil, shared.ErrNotFound)
	plans.On("FindByID", mock.Anything, planID).Return(plan, nil)

	_, err = svc.Register(context.Background(), req)

	assert.Error(t, err)
}

func TestClientService_Suspend_DisablesRouterUser(t *testing.T) {
	svc, clients, _, router := newClientServiceFixture()
	client, err := subscriber.NewClient("John", "254712345678", "jkamau", "pw", subscriber.ConnectionTypePPPoE, nil, decimal.NewFromFloat(2500), decimal.Zero)
	require.NoError(t, err)

	clients.On("FindByID", mock.Anything, client.ID).Return(client, nil)
	clients.On("SaveWithLock", mock.Anything, client).Return(nil)
	router.On("DisableUser", mock.Anything, "jkamau").Return(nil)

	resp, err := svc.Suspend(context.Background(), client.ID)

	require.NoError(t, err)
	assert.Equal(t, "suspended", resp.Status)
	router.AssertExpectations(t)
}

func TestClientService_SuspendOverdue(t *testing.T) {
	svc, clients, _, router := newClientServiceFixture()

	overdue, err := subscriber.NewClient("Late", "254712000001", "late", "pw", subscriber.ConnectionTypePPPoE, nil, decimal.NewFromFloat(2500), decimal.Zero)
	require.NoError(t, err)
	overdue.Balance = decimal.NewFromFloat(6000)

	current, err := subscriber.NewClient("Fine", "254712000002", "fine", "pw", subscriber.ConnectionTypePPPoE, nil, decimal.NewFromFloat(2500), decimal.Zero)
	require.NoError(t, err)

	clients.On("FindByStatus", mock.Anything, subscriber.ClientStatusActive, mock.Anything).
		Return([]subscriber.Client{*overdue, *current}, nil)
	clients.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*subscriber.Client")).Return(nil)
	router.On("DisableUser", mock.Anything, "late").Return(nil)

	suspended, err := svc.SuspendOverdue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, suspended)
	router.AssertExpectations(t)
}

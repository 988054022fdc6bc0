package ops

import (
	"context"
	"testing"

	"github.com/netbill/backend/internal/domain/ops"
	"github.com/netbill/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockResetExecutor is a mock implementation of ops.ResetExecutor
type MockResetExecutor struct {
	mock.Mock
}

func (m *MockResetExecutor) Execute(ctx context.Context, scope ops.ResetScope, log *ops.SystemResetLog) (ops.ResetCounts, error) {
	args := m.Called(ctx, scope, log)
	return args.Get(0).(ops.ResetCounts), args.Error(1)
}

// MockResetLogRepository is a mock implementation of ops.SystemResetLogRepository
type MockResetLogRepository struct {
	mock.Mock
}

func (m *MockResetLogRepository) Save(ctx context.Context, log *ops.SystemResetLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockResetLogRepository) FindRecent(ctx context.Context, limit int) ([]*ops.SystemResetLog, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*ops.SystemResetLog), args.Error(1)
}

func newResetFixture() (*ResetService, *MockResetExecutor, *MockResetLogRepository) {
	executor := new(MockResetExecutor)
	logs := new(MockResetLogRepository)
	svc := NewResetService(executor, logs, zap.NewNop())
	return svc, executor, logs
}

func TestResetService_Execute_RequiresConfirmation(t *testing.T) {
	svc, executor, _ := newResetFixture()

	tests := []struct {
		name string
		req  ResetRequest
	}{
		{"no confirmation", ResetRequest{Type: "all", PerformedBy: "admin"}},
		{"wrong token", ResetRequest{Type: "all", Confirmation: "reset", PerformedBy: "admin"}},
		{"lowercase token", ResetRequest{Type: "all", Confirmation: "Reset", PerformedBy: "admin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Execute(context.Background(), tt.req)
			assert.Equal(t, shared.ErrResetNotConfirmed, err)
		})
	}
	executor.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}

func TestResetService_Execute_TypedToken(t *testing.T) {
	svc, executor, _ := newResetFixture()

	executor.On("Execute", mock.Anything, ops.ResetScope{Clients: true, Invoices: true, Payments: true, Usage: true}, mock.AnythingOfType("*ops.SystemResetLog")).
		Return(ops.ResetCounts{Clients: 12, Invoices: 40, Payments: 35, Usage: 900}, nil)

	result, err := svc.Execute(context.Background(), ResetRequest{
		Type:         "all",
		Confirmation: "RESET",
		PerformedBy:  "admin",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(12), result.ClientsDeleted)
	assert.Equal(t, int64(40), result.InvoicesDeleted)
	assert.Equal(t, int64(35), result.PaymentsDeleted)
	assert.Equal(t, int64(900), result.UsageDeleted)
}

func TestResetService_Execute_ConfirmFlagBypassesToken(t *testing.T) {
	svc, executor, _ := newResetFixture()

	executor.On("Execute", mock.Anything, mock.Anything, mock.AnythingOfType("*ops.SystemResetLog")).
		Return(ops.ResetCounts{}, nil)

	_, err := svc.Execute(context.Background(), ResetRequest{
		Type:        "financial",
		Confirm:     true,
		PerformedBy: "resetctl",
	})

	require.NoError(t, err)
}

func TestResetService_Execute_FinancialScope(t *testing.T) {
	svc, executor, _ := newResetFixture()

	executor.On("Execute", mock.Anything, ops.ResetScope{Invoices: true, Payments: true, ResetBalances: true}, mock.Anything).
		Return(ops.ResetCounts{Invoices: 10, Payments: 8}, nil)

	result, err := svc.Execute(context.Background(), ResetRequest{
		Type:         "financial",
		Confirmation: "RESET",
		PerformedBy:  "admin",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(0), result.ClientsDeleted)
	executor.AssertExpectations(t)
}

func TestResetService_Execute_CustomScope(t *testing.T) {
	svc, executor, _ := newResetFixture()

	scope := ops.ResetScope{Usage: true}
	executor.On("Execute", mock.Anything, scope, mock.Anything).
		Return(ops.ResetCounts{Usage: 500}, nil)

	result, err := svc.Execute(context.Background(), ResetRequest{
		Type:         "custom",
		Custom:       scope,
		Confirmation: "RESET",
		PerformedBy:  "admin",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(500), result.UsageDeleted)
}

func TestResetService_Execute_EmptyCustomScope(t *testing.T) {
	svc, executor, _ := newResetFixture()

	_, err := svc.Execute(context.Background(), ResetRequest{
		Type:         "custom",
		Confirmation: "RESET",
		PerformedBy:  "admin",
	})

	assert.Error(t, err)
	executor.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}

func TestResetService_Execute_RequiresActor(t *testing.T) {
	svc, _, _ := newResetFixture()

	_, err := svc.Execute(context.Background(), ResetRequest{
		Type:         "all",
		Confirmation: "RESET",
	})

	assert.Error(t, err)
}

func TestResetService_History_ClampsLimit(t *testing.T) {
	svc, _, logs := newResetFixture()

	logs.On("FindRecent", mock.Anything, 20).Return([]*ops.SystemResetLog{}, nil)

	_, err := svc.History(context.Background(), -5)

	require.NoError(t, err)
	logs.AssertExpectations(t)
}

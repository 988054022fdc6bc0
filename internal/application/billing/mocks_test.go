package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/netbill/backend/internal/domain/billing"
	"github.com/netbill/backend/internal/domain/notify"
	"github.com/netbill/backend/internal/domain/shared"
	"github.com/netbill/backend/internal/domain/subscriber"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockInvoiceRepository is a mock implementation of billing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, number string) (*billing.Invoice, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*billing.Invoice, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*billing.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]*billing.Invoice, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindOutstandingByClient(ctx context.Context, clientID uuid.UUID) ([]*billing.Invoice, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindOverdue(ctx context.Context, asOf time.Time) ([]*billing.Invoice, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).([]*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) LastSequenceForDay(ctx context.Context, prefix string) (int, error) {
	args := m.Called(ctx, prefix)
	return args.Int(0), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockPaymentRepository is a mock implementation of billing.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*billing.Payment, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*billing.Payment, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*billing.Payment), args.Get(1).(int64), args.Error(2)
}

func (m *MockPaymentRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]*billing.Payment, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindBetween(ctx context.Context, from, to time.Time) ([]*billing.Payment, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SumBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

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

// =============================================================================
// Unit of Work Fake
// =============================================================================

// fakeUnitOfWork runs the callback directly against the given mocks.
// Transactionality itself is covered by the persistence tests.
type fakeUnitOfWork struct {
	invoices *MockInvoiceRepository
	payments *MockPaymentRepository
	clients  *MockClientRepository
}

func (u *fakeUnitOfWork) Execute(ctx context.Context, fn func(repos billing.TxRepositories) error) error {
	return fn(u)
}

func (u *fakeUnitOfWork) Invoices() billing.InvoiceRepository        { return u.invoices }
func (u *fakeUnitOfWork) Payments() billing.PaymentRepository        { return u.payments }
func (u *fakeUnitOfWork) Clients() subscriber.ClientRepository       { return u.clients }

// =============================================================================
// Gateway Mocks
// =============================================================================

// MockIdempotencyStore is a mock implementation of billing.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, transactionID string) (bool, error) {
	args := m.Called(ctx, transactionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, transactionID string) error {
	args := m.Called(ctx, transactionID)
	return args.Error(0)
}

// MockSMSSender is a mock implementation of notify.SMSSender
type MockSMSSender struct {
	mock.Mock
}

func (m *MockSMSSender) SendSMS(ctx context.Context, phone, message string) (*notify.SendResult, error) {
	args := m.Called(ctx, phone, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notify.SendResult), args.Error(1)
}

// MockMobileMoneyGateway is a mock implementation of billing.MobileMoneyGateway
type MockMobileMoneyGateway struct {
	mock.Mock
}

func (m *MockMobileMoneyGateway) InitiateSTKPush(ctx context.Context, req billing.STKPushRequest) (*billing.STKPushResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.STKPushResponse), args.Error(1)
}

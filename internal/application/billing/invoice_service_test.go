package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/netbill/backend/internal/domain/billing"
	"github.com/netbill/backend/internal/domain/shared"
	"github.com/netbill/backend/internal/domain/subscriber"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T) *subscriber.Client {
	c, err := subscriber.NewClient("John Kamau", "254712345678", "jkamau", "pw", subscriber.ConnectionTypePPPoE, nil, decimal.NewFromFloat(2500.00), decimal.Zero)
	require.NoError(t, err)
	return c
}

func newInvoiceServiceFixture() (*InvoiceService, *fakeUnitOfWork, *MockInvoiceRepository, *MockClientRepository) {
	invoices := new(MockInvoiceRepository)
	payments := new(MockPaymentRepository)
	clients := new(MockClientRepository)
	uow := &fakeUnitOfWork{invoices: invoices, payments: payments, clients: clients}
	svc := NewInvoiceService(uow, invoices, clients, zap.NewNop())
	return svc, uow, invoices, clients
}

func TestInvoiceService_Issue(t *testing.T) {
	svc, _, invoices, clients := newInvoiceServiceFixture()
	client := newTestClient(t)
	prefix := billing.DayPrefix(time.Now())

	clients.On("FindByID", mock.Anything, client.ID).Return(client, nil)
	invoices.On("LastSequenceForDay", mock.Anything, prefix).Return(7, nil)
	invoices.On("Save", mock.Anything, mock.AnythingOfType("*billing.Invoice")).Return(nil)

	resp, err := svc.Issue(context.Background(), IssueInvoiceRequest{
		ClientID: client.ID,
		Amount:   decimal.NewFromFloat(2500.00),
	})

	require.NoError(t, err)
	assert.Equal(t, prefix+"-0008", resp.InvoiceNumber)
	assert.Equal(t, "draft", resp.Status)
	invoices.AssertExpectations(t)
}

func TestInvoiceService_Issue_AmountDefaultsToMonthlyFee(t *testing.T) {
	svc, _, invoices, clients := newInvoiceServiceFixture()
	client := newTestClient(t)

	clients.On("FindByID", mock.Anything, client.ID).Return(client, nil)
	invoices.On("LastSequenceForDay", mock.Anything, mock.Anything).Return(0, nil)
	invoices.On("Save", mock.Anything, mock.AnythingOfType("*billing.Invoice")).Return(nil)

	resp, err := svc.Issue(context.Background(), IssueInvoiceRequest{ClientID: client.ID})

	require.NoError(t, err)
	assert.True(t, resp.Amount.Equal(decimal.NewFromFloat(2500.00)))
}

func TestInvoiceService_Issue_RetriesOnNumberCollision(t *testing.T) {
	svc, _, invoices, clients := newInvoiceServiceFixture()
	client := newTestClient(t)
	prefix := billing.DayPrefix(time.Now())

	clients.On("FindByID", mock.Anything, client.ID).Return(client, nil)
	// first read sees stale sequence, save hits the unique index,
	// second read sees the fresh one
	invoices.On("LastSequenceForDay", mock.Anything, prefix).Return(3, nil).Once()
	invoices.On("Save", mock.Anything, mock.AnythingOfType("*billing.Invoice")).Return(shared.ErrDuplicateInvoiceNo).Once()
	invoices.On("LastSequenceForDay", mock.Anything, prefix).Return(4, nil).Once()
	invoices.On("Save", mock.Anything, mock.AnythingOfType("*billing.Invoice")).Return(nil).Once()

	resp, err := svc.Issue(context.Background(), IssueInvoiceRequest{
		ClientID: client.ID,
		Amount:   decimal.NewFromFloat(1000),
	})

	require.NoError(t, err)
	assert.Equal(t, prefix+"-0005", resp.InvoiceNumber)
	invoices.AssertExpectations(t)
}

func TestInvoiceService_Issue_GivesUpAfterRetries(t *testing.T) {
	svc, _, invoices, clients := newInvoiceServiceFixture()
	client := newTestClient(t)

	clients.On("FindByID", mock.Anything, client.ID).Return(client, nil)
	invoices.On("LastSequenceForDay", mock.Anything, mock.Anything).Return(1, nil)
	invoices.On("Save", mock.Anything, mock.AnythingOfType("*billing.Invoice")).Return(shared.ErrDuplicateInvoiceNo)

	_, err := svc.Issue(context.Background(), IssueInvoiceRequest{
		ClientID: client.ID,
		Amount:   decimal.NewFromFloat(1000),
	})

	assert.Equal(t, shared.ErrDuplicateInvoiceNo, err)
	invoices.AssertNumberOfCalls(t, "Save", 3)
}

func TestInvoiceService_Issue_ClientNotFound(t *testing.T) {
	svc, _, _, clients := newInvoiceServiceFixture()
	id := uuid.New()

	clients.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	_, err := svc.Issue(context.Background(), IssueInvoiceRequest{ClientID: id})

	assert.Equal(t, shared.ErrNotFound, err)
}

func TestInvoiceService_GenerateMonthly(t *testing.T) {
	svc, _, invoices, clients := newInvoiceServiceFixture()
	asOf := time.Now()

	c1 := *newTestClient(t)
	c2 := *newTestClient(t)
	c2.MonthlyFee = decimal.Zero // no fee, skipped

	clients.On("FindDueForPayment", mock.Anything, asOf).Return([]subscriber.Client{c1, c2}, nil)
	clients.On("FindByID", mock.Anything, c1.ID).Return(&c1, nil)

	// The service charges the slice element it was handed, so capture
	// the client that reaches SaveWithLock and assert on that.
	var charged *subscriber.Client
	clients.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*subscriber.Client")).
		Run(func(args mock.Arguments) {
			charged = args.Get(1).(*subscriber.Client)
		}).
		Return(nil)
	invoices.On("LastSequenceForDay", mock.Anything, mock.Anything).Return(0, nil)
	invoices.On("Save", mock.Anything, mock.AnythingOfType("*billing.Invoice")).Return(nil)

	issued, err := svc.GenerateMonthly(context.Background(), asOf)

	require.NoError(t, err)
	assert.Equal(t, 1, issued)
	require.NotNil(t, charged)
	assert.Equal(t, c1.ID, charged.ID)
	assert.True(t, charged.Balance.Equal(decimal.NewFromFloat(2500.00)))
}

func TestInvoiceService_MarkOverdue(t *testing.T) {
	svc, _, invoices, _ := newInvoiceServiceFixture()
	asOf := time.Now()

	inv1, err := billing.NewInvoice(uuid.New(), decimal.NewFromFloat(2500), asOf.AddDate(0, 0, -5))
	require.NoError(t, err)
	require.NoError(t, inv1.MarkSent())

	invoices.On("FindOverdue", mock.Anything, asOf).Return([]*billing.Invoice{inv1}, nil)
	invoices.On("Save", mock.Anything, inv1).Return(nil)

	flagged, err := svc.MarkOverdue(context.Background(), asOf)

	require.NoError(t, err)
	assert.Equal(t, 1, flagged)
	assert.Equal(t, billing.InvoiceStatusOverdue, inv1.Status)
}

func TestInvoiceService_Cancel_PaidInvoiceFails(t *testing.T) {
	svc, _, invoices, _ := newInvoiceServiceFixture()

	inv, err := billing.NewInvoice(uuid.New(), decimal.NewFromFloat(2500), time.Now())
	require.NoError(t, err)
	require.NoError(t, inv.MarkPaid(time.Now()))

	invoices.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)

	_, err = svc.Cancel(context.Background(), inv.ID)

	assert.Error(t, err)
	invoices.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

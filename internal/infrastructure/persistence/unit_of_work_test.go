package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/netbill/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormUnitOfWork_CommitsAllWrites(t *testing.T) {
	db := newTestDB(t)
	uow := NewGormUnitOfWork(db)
	ctx := context.Background()

	client := newTestClient(t, "Tx Client", "txclient")
	client.ChargeMonthlyFee()
	require.NoError(t, NewGormClientRepository(db).Save(ctx, client))

	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	invoice := newTestInvoice(t, client.ID, billing.FormatInvoiceNumber(day, 1), day.AddDate(0, 0, 14))
	require.NoError(t, NewGormInvoiceRepository(db).Save(ctx, invoice))

	err := uow.Execute(ctx, func(repos billing.TxRepositories) error {
		payment, err := billing.NewPayment(client.ID, &invoice.ID, decimal.NewFromInt(2500), billing.PaymentMethodMpesa, "QA12345", "", time.Now())
		if err != nil {
			return err
		}
		if err := repos.Payments().Save(ctx, payment); err != nil {
			return err
		}
		if err := invoice.MarkPaid(time.Now()); err != nil {
			return err
		}
		if err := repos.Invoices().Save(ctx, invoice); err != nil {
			return err
		}
		if err := client.ApplyPayment(decimal.NewFromInt(2500), time.Now()); err != nil {
			return err
		}
		return repos.Clients().SaveWithLock(ctx, client)
	})
	require.NoError(t, err)

	settled, err := NewGormInvoiceRepository(db).FindByID(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusPaid, settled.Status)

	paid, err := NewGormClientRepository(db).FindByID(ctx, client.ID)
	require.NoError(t, err)
	assert.True(t, paid.Balance.IsZero())

	found, err := NewGormPaymentRepository(db).FindByTransactionID(ctx, "QA12345")
	require.NoError(t, err)
	assert.Equal(t, client.ID, found.ClientID)
}

func TestGormUnitOfWork_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	uow := NewGormUnitOfWork(db)
	ctx := context.Background()

	client := newTestClient(t, "Rollback Client", "rbclient")
	require.NoError(t, NewGormClientRepository(db).Save(ctx, client))

	boom := errors.New("reconciliation failed")
	err := uow.Execute(ctx, func(repos billing.TxRepositories) error {
		payment, err := billing.NewPayment(client.ID, nil, decimal.NewFromInt(100), billing.PaymentMethodCash, "RB1", "", time.Now())
		if err != nil {
			return err
		}
		if err := repos.Payments().Save(ctx, payment); err != nil {
			return err
		}
		return boom
	})
	assert.Equal(t, boom, err)

	// The payment written before the error must not survive
	count, countErr := NewGormPaymentRepository(db).Count(ctx)
	require.NoError(t, countErr)
	assert.Zero(t, count)
}

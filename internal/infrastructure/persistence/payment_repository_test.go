package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/netbill/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockPaymentRepository creates a GormPaymentRepository with a mocked SQL connection
func newMockPaymentRepository(t *testing.T) (*GormPaymentRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormPaymentRepository(gormDB), mock, mockDB
}

func TestGormPaymentRepository_FindByTransactionID(t *testing.T) {
	t.Run("finds payment by gateway reference", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		paymentID := uuid.New()
		clientID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "client_id", "amount", "method", "transaction_id", "payment_date"}).
			AddRow(paymentID, clientID, decimal.NewFromInt(2500), "mpesa", "QA12345XYZ", time.Now())

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE transaction_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("QA12345XYZ", 1).
			WillReturnRows(rows)

		payment, err := repo.FindByTransactionID(context.Background(), "QA12345XYZ")

		assert.NoError(t, err)
		assert.NotNil(t, payment)
		assert.Equal(t, paymentID, payment.ID)
		assert.Equal(t, "QA12345XYZ", payment.TransactionID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for unknown reference", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE transaction_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("UNKNOWN", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		payment, err := repo.FindByTransactionID(context.Background(), "UNKNOWN")

		assert.Error(t, err)
		assert.Nil(t, payment)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentRepository_SumBetween(t *testing.T) {
	t.Run("sums collected amounts in range", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 1, 0)

		rows := sqlmock.NewRows([]string{"coalesce"}).AddRow(decimal.NewFromInt(7500))

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM "payments" WHERE payment_date >= \$1 AND payment_date < \$2`).
			WithArgs(from, to).
			WillReturnRows(rows)

		total, err := repo.SumBetween(context.Background(), from, to)

		assert.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromInt(7500)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

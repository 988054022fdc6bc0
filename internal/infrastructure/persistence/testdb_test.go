package persistence

import (
	"testing"

	"github.com/netbill/backend/internal/domain/billing"
	"github.com/netbill/backend/internal/domain/catalog"
	"github.com/netbill/backend/internal/domain/identity"
	"github.com/netbill/backend/internal/domain/ops"
	"github.com/netbill/backend/internal/domain/subscriber"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB creates an in-memory SQLite database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&catalog.ServicePlan{},
		&subscriber.Client{},
		&subscriber.NetworkUsage{},
		&billing.Invoice{},
		&billing.Payment{},
		&identity.User{},
		&ops.SystemResetLog{},
		&ops.SystemSetting{},
	)
	require.NoError(t, err)

	return db
}

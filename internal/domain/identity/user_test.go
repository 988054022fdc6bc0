package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser("admin", "admin@netbill.co.ke", "s3cretpass", "System Admin", true)

	require.NoError(t, err)
	assert.True(t, u.IsAdmin)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "s3cretpass", u.PasswordHash)
	assert.True(t, u.CheckPassword("s3cretpass"))
	assert.False(t, u.CheckPassword("wrong"))
}

func TestNewUser_Validation(t *testing.T) {
	_, err := NewUser("", "a@b.com", "s3cretpass", "", false)
	assert.Error(t, err)

	_, err = NewUser("admin", "", "s3cretpass", "", false)
	assert.Error(t, err)

	_, err = NewUser("admin", "a@b.com", "short", "", false)
	assert.Error(t, err)
}

func TestUser_RecordLogin(t *testing.T) {
	u, err := NewUser("ops", "ops@netbill.co.ke", "s3cretpass", "", false)
	require.NoError(t, err)

	at := time.Now()
	u.RecordLogin(at)

	require.NotNil(t, u.LastLoginAt)
	assert.Equal(t, at, *u.LastLoginAt)
}

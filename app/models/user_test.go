package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserValidation(t *testing.T) {
	u, err := CreateUser("jamie", "jamie@example.com", "secret-pw")
	require.NoError(t, err)

	assert.Equal(t, ROLE_USER, u.Role)
	assert.Equal(t, STATUS_INACTIVE, u.Status)
	assert.NotEqual(t, "secret-pw", u.Password)
	assert.True(t, u.CheckPassword("secret-pw"))
	assert.False(t, u.CheckPassword("wrong"))

	_, err = CreateUser("x", "jamie@example.com", "secret-pw")
	assert.Error(t, err, "name below minimum length")

	_, err = CreateUser("jamie", "not-an-email", "secret-pw")
	assert.Error(t, err)

	_, err = CreateUser("jamie", "jamie@example.com", "short")
	assert.Error(t, err, "password below minimum length")
}

func TestAPIKeyHashing(t *testing.T) {
	raw, err := NewAPIKey()
	require.NoError(t, err)
	assert.True(t, len(raw) > 10)

	h := HashAPIKey(raw)
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashAPIKey(raw))

	other, err := NewAPIKey()
	require.NoError(t, err)
	assert.NotEqual(t, h, HashAPIKey(other))
}

func TestGenerateActivationToken(t *testing.T) {
	u := &User{}
	require.NoError(t, u.GenerateActivationToken())
	assert.Len(t, u.ActivationToken, 32)
	assert.NotNil(t, u.ActivationSentAt)
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: ROLE_ADMIN}).IsAdmin())
	assert.False(t, (&User{Role: ROLE_USER}).IsAdmin())
}

package utils_test

import (
	"testing"

	"trading_platform/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateAndParseJWT(t *testing.T) {
	token, err := utils.GenerateJWT(42, "alice", "alice@test.com", false, testSecret)
	require.NoError(t, err)

	claims, err := utils.ParseJWT(token, testSecret)
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice@test.com", claims.Email)
	assert.False(t, claims.IsAdmin)
}

func TestParseJWT_WrongSecret(t *testing.T) {
	token, err := utils.GenerateJWT(1, "bob", "bob@test.com", false, testSecret)
	require.NoError(t, err)

	_, err = utils.ParseJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestRefreshJWT_PreservesPrincipal(t *testing.T) {
	token, err := utils.GenerateJWT(7, "admin", "admin@admin.com", true, testSecret)
	require.NoError(t, err)

	refreshed, err := utils.RefreshJWT(token, testSecret)
	require.NoError(t, err)

	claims, err := utils.ParseJWT(refreshed, testSecret)
	require.NoError(t, err)
	assert.EqualValues(t, 7, claims.UserID)
	assert.True(t, claims.IsAdmin)
}

func TestRefreshJWT_RejectsInvalidToken(t *testing.T) {
	_, err := utils.RefreshJWT("not-a-token", testSecret)
	assert.Error(t, err)
}

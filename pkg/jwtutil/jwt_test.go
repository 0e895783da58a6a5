package jwtutil

import (
	"testing"

	"github.com/convertly-dev/convertlykit/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.JWTConfig {
	return &config.JWTConfig{
		SigningKey:      "test-signing-key",
		ExpirationHours: 1,
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	Initialize(testConfig())

	token, err := GenerateToken("user_2abc", "vendor@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user_2abc", claims.Subject)
	assert.Equal(t, "vendor@example.com", claims.Email)
}

func TestValidateTokenWrongKey(t *testing.T) {
	Initialize(testConfig())
	token, err := GenerateToken("user_2abc", "vendor@example.com")
	require.NoError(t, err)

	Initialize(&config.JWTConfig{SigningKey: "other-key", ExpirationHours: 1})
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenMissingSubject(t *testing.T) {
	Initialize(testConfig())

	token, err := GenerateToken("", "vendor@example.com")
	require.NoError(t, err)

	_, err = ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing subject")
}

func TestValidateTokenGarbage(t *testing.T) {
	Initialize(testConfig())
	_, err := ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestUninitializedConfig(t *testing.T) {
	Initialize(testConfig())
	token, err := GenerateToken("user_2abc", "vendor@example.com")
	require.NoError(t, err)

	cfg = nil
	defer Initialize(testConfig())

	_, err = GenerateToken("user_2abc", "vendor@example.com")
	assert.Error(t, err)
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

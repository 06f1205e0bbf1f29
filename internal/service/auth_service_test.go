package service_test

import (
	"testing"

	"arcadechat/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_TokenRoundTrip(t *testing.T) {
	svc := service.NewAuthService("test-secret")

	token, err := svc.GenerateGuestToken("p1", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateGuestToken(token)
	require.NoError(t, err)
	assert.Equal(t, "p1", claims.PlayerID)
	assert.Equal(t, "alice", claims.Nickname)
}

func TestAuthService_RejectsGarbageToken(t *testing.T) {
	svc := service.NewAuthService("test-secret")

	_, err := svc.ValidateGuestToken("not.a.token")
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestAuthService_RejectsTokenSignedWithOtherSecret(t *testing.T) {
	token, err := service.NewAuthService("secret-a").GenerateGuestToken("p1", "alice")
	require.NoError(t, err)

	_, err = service.NewAuthService("secret-b").ValidateGuestToken(token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

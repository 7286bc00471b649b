package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "medtrack/pkg/domain"
	dErrors "medtrack/pkg/domain-errors"
)

var jwtService = NewJWTService(
	"test-signing-key",
	"test-issuer",
	"test-audience",
)

func Test_Generate_RoundTrip(t *testing.T) {
	userID := id.NewUserID()
	sessionID := id.NewSessionID()
	now := time.Now()

	tok, err := jwtService.Generate(userID, sessionID, "patient", now, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := jwtService.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, sessionID.String(), claims.SessionID)
	assert.Equal(t, "patient", claims.Role)
	assert.WithinDuration(t, now.Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	tok, err := jwtService.Generate(id.NewUserID(), id.NewSessionID(), "caretaker", time.Now().Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(tok)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_WrongKey(t *testing.T) {
	other := NewJWTService("other-key", "test-issuer", "test-audience")
	tok, err := other.Generate(id.NewUserID(), id.NewSessionID(), "patient", time.Now(), time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(tok)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

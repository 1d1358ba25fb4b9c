package jwt

import (
	"testing"

	"github.com/campustrack/attendance-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt"

func TestGenerateAccessToken_Claims(t *testing.T) {
	svc := NewJWTService(testSecret, "1h", "24h")

	studentID := "student-1"
	tokenString, expiresAt, err := svc.GenerateAccessToken("user-1", "ayu@example.com", &studentID, user.RoleStudent)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)
	assert.Greater(t, expiresAt, int64(0))

	token, err := svc.JWTAuth().Decode(tokenString)
	require.NoError(t, err)

	tokenType, _ := token.Get("type")
	assert.Equal(t, "access", tokenType)
	userID, _ := token.Get("user_id")
	assert.Equal(t, "user-1", userID)
	claimStudentID, _ := token.Get("student_id")
	assert.Equal(t, "student-1", claimStudentID)
	role, _ := token.Get("role")
	assert.Equal(t, "student", role)
}

func TestGenerateAccessToken_NoStudentProfile(t *testing.T) {
	svc := NewJWTService(testSecret, "1h", "24h")

	tokenString, _, err := svc.GenerateAccessToken("admin-1", "admin@example.com", nil, user.RoleAdmin)
	require.NoError(t, err)

	token, err := svc.JWTAuth().Decode(tokenString)
	require.NoError(t, err)
	role, _ := token.Get("role")
	assert.Equal(t, "admin", role)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc := NewJWTService(testSecret, "1h", "24h")

	tokenString, _, err := svc.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	userID, err := svc.DecodeRefreshToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestDecodeRefreshToken_RejectsAccessToken(t *testing.T) {
	svc := NewJWTService(testSecret, "1h", "24h")

	tokenString, _, err := svc.GenerateAccessToken("user-1", "ayu@example.com", nil, user.RoleStudent)
	require.NoError(t, err)

	_, err = svc.DecodeRefreshToken(tokenString)
	assert.Error(t, err)
}

func TestDecodeRefreshToken_RejectsWrongSecret(t *testing.T) {
	issuer := NewJWTService("some-other-secret", "1h", "24h")
	verifier := NewJWTService(testSecret, "1h", "24h")

	tokenString, _, err := issuer.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	_, err = verifier.DecodeRefreshToken(tokenString)
	assert.Error(t, err)
}

func TestRevokeToken(t *testing.T) {
	svc := NewJWTService(testSecret, "1h", "24h")

	tokenString, _, err := svc.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	assert.False(t, svc.IsTokenRevoked(tokenString))
	svc.RevokeToken(tokenString)
	assert.True(t, svc.IsTokenRevoked(tokenString))
}

func TestRefreshTokenCookie(t *testing.T) {
	svc := NewJWTService(testSecret, "1h", "24h")

	cookie := svc.RefreshTokenCookie("some-token", 1767225600)
	assert.Equal(t, "refresh_token", cookie.Name)
	assert.Equal(t, "some-token", cookie.Value)
	assert.Equal(t, "/api/v1/auth", cookie.Path)
	assert.True(t, cookie.HttpOnly)
}

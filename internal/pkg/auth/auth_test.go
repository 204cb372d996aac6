package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/coursebooking/internal/pkg/apperrors"
	"golang.org/x/crypto/bcrypt"
)

func newService() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "coursebooking",
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	s := newService()

	token, expiresIn, err := s.GenerateToken("owner")
	require.NoError(t, err)
	assert.Equal(t, 3600, expiresIn)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "owner", claims.Username)
	assert.Equal(t, RoleOperator, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateTokenExpired(t *testing.T) {
	s := newService()
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := s.GenerateToken("owner")
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestValidateTokenRejectsForeignSignatures(t *testing.T) {
	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour, TokenIssuer: "coursebooking"})
	token, _, err := other.GenerateToken("owner")
	require.NoError(t, err)

	_, err = newService().ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	_, err = newService().ValidateToken("")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestValidateTokenRejectsNoneAlgorithm(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Username: "owner", Role: RoleOperator})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newService().ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	token, err = ExtractBearerToken("bearer xyz")
	require.NoError(t, err)
	assert.Equal(t, "xyz", token)

	for _, h := range []string{"", "Bearer ", "abc.def", "Basic Zm9v"} {
		_, err := ExtractBearerToken(h)
		assert.ErrorIs(t, err, apperrors.ErrInvalidFormat, h)
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, CheckPassword(string(hash), "hunter2"))
	assert.False(t, CheckPassword(string(hash), "hunter3"))
	assert.False(t, CheckPassword("not-a-hash", "hunter2"))
}

func TestHashOperatorPassword(t *testing.T) {
	hash, err := HashOperatorPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "correct horse"))

	cost, err := ValidatePasswordHash(hash)
	require.NoError(t, err)
	assert.Equal(t, OperatorHashCost, cost)

	_, err = HashOperatorPassword("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
	_, err = HashOperatorPassword("ççççççç")
	assert.ErrorIs(t, err, ErrPasswordTooShort, "length counts characters, not bytes")
	_, err = HashOperatorPassword(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestValidatePasswordHashRejectsPlaintext(t *testing.T) {
	for _, h := range []string{"", "hunter2", "$2a$10$abc"} {
		_, err := ValidatePasswordHash(h)
		assert.ErrorIs(t, err, ErrMalformedHash, h)
	}
}

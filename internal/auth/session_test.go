package auth

import (
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-sessions"

func TestIssueVerifyRoundTrip(t *testing.T) {
	m := NewSessionManager(testSecret)

	token, err := m.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestIssueWithoutSecret(t *testing.T) {
	m := NewSessionManager("")
	_, err := m.Issue(1)
	assert.Error(t, err)
}

func signWith(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func sessionClaims(userID uint, expiresIn time.Duration) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": "inkwell-api",
		"aud": "inkwell-client",
		"exp": now.Add(expiresIn).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
	}
}

func TestVerifyRejectionsAreOpaque(t *testing.T) {
	m := NewSessionManager(testSecret)

	valid, err := m.Issue(1)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"garbage token", "not.a.jwt"},
		{"tampered payload", valid[:len(valid)-4] + "XXXX"},
		{"wrong secret", signWith(t, "some-other-secret", sessionClaims(1, time.Hour))},
		{"expired", signWith(t, testSecret, sessionClaims(1, -time.Hour))},
		{"wrong issuer", signWith(t, testSecret, jwt.MapClaims{
			"sub": "1", "iss": "someone-else", "aud": "inkwell-client",
			"exp": time.Now().Add(time.Hour).Unix(),
		})},
		{"wrong audience", signWith(t, testSecret, jwt.MapClaims{
			"sub": "1", "iss": "inkwell-api", "aud": "other-client",
			"exp": time.Now().Add(time.Hour).Unix(),
		})},
		{"missing expiry", signWith(t, testSecret, jwt.MapClaims{
			"sub": "1", "iss": "inkwell-api", "aud": "inkwell-client",
		})},
		{"non-numeric subject", signWith(t, testSecret, jwt.MapClaims{
			"sub": "abc", "iss": "inkwell-api", "aud": "inkwell-client",
			"exp": time.Now().Add(time.Hour).Unix(),
		})},
		{"zero subject", signWith(t, testSecret, jwt.MapClaims{
			"sub": "0", "iss": "inkwell-api", "aud": "inkwell-client",
			"exp": time.Now().Add(time.Hour).Unix(),
		})},
		{"alg none", func() string {
			token := jwt.NewWithClaims(jwt.SigningMethodNone, sessionClaims(1, time.Hour))
			s, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
			require.NoError(t, err)
			return s
		}()},
	}

	var messages []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID, err := m.Verify(tt.token)
			require.Error(t, err)
			assert.Zero(t, userID)
			messages = append(messages, err.Error())
		})
	}

	// Every rejection reads identically; the cause must not leak.
	for _, msg := range messages {
		assert.Equal(t, messages[0], msg)
	}
}

func TestTokensAreUniquePerIssue(t *testing.T) {
	m := NewSessionManager(testSecret)

	a, err := m.Issue(1)
	require.NoError(t, err)
	b, err := m.Issue(1)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

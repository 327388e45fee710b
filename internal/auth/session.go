// Package auth issues and verifies the signed session tokens that carry a
// user's identity between requests.
package auth

import (
	"fmt"
	"strconv"
	"time"

	"inkwell/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName is the name of the HTTP-only session cookie.
const CookieName = "session"

// SessionTTL is how long an issued session stays valid.
const SessionTTL = 7 * 24 * time.Hour

const (
	issuer   = "inkwell-api"
	audience = "inkwell-client"
)

// SessionManager signs and verifies session tokens with a server-held secret.
type SessionManager struct {
	secret []byte
}

// NewSessionManager returns a SessionManager signing with the given secret.
func NewSessionManager(secret string) *SessionManager {
	return &SessionManager{secret: []byte(secret)}
}

// Issue creates a signed session token for the given user ID.
func (m *SessionManager) Issue(userID uint) (string, error) {
	if len(m.secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": issuer,
		"aud": audience,
		"exp": now.Add(SessionTTL).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8]),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// errOpaque is the single failure returned for every verification problem.
// Callers must not learn whether the signature, expiry or structure failed.
func errOpaque() *models.AppError {
	return models.NewUnauthorizedError("Invalid or expired session")
}

// Verify validates a session token and returns the embedded user ID.
// Any failure (missing, tampered, expired, wrong issuer/audience) yields the
// same opaque UNAUTHORIZED error.
func (m *SessionManager) Verify(tokenString string) (uint, error) {
	if tokenString == "" {
		return 0, errOpaque()
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return m.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return 0, errOpaque()
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errOpaque()
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, errOpaque()
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return 0, errOpaque()
	}

	return uint(userID), nil
}

package service

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/therabot/therabot/internal/core/domain"
)

const (
	SessionIssuer    = "therabot"
	SessionSecretLen = 32
)

// SessionClaims is the payload of a browser session token.
type SessionClaims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SessionService signs and validates the tokens stored in the session
// cookie.
type SessionService struct {
	secret []byte
	maxAge time.Duration
}

// NewSessionService creates a session service. An empty secret is replaced
// by a random one, so sessions then end when the process restarts. A zero
// maxAge issues tokens without an expiry.
func NewSessionService(secret string, maxAge time.Duration) (*SessionService, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, SessionSecretLen)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
	}

	return &SessionService{
		secret: key,
		maxAge: maxAge,
	}, nil
}

// Issue returns a signed token for identity.
func (s *SessionService) Issue(identity *domain.Identity) (string, error) {
	now := time.Now()

	claims := SessionClaims{
		UserID:   identity.UserID,
		Username: identity.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.New().String(),
			IssuedAt: jwt.NewNumericDate(now),
			Issuer:   SessionIssuer,
		},
	}
	if s.maxAge > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.maxAge))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// Validate checks a token and returns the identity it carries.
func (s *SessionService) Validate(tokenString string) (*domain.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(SessionIssuer))

	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, fmt.Errorf("invalid session claims")
	}

	return &domain.Identity{UserID: claims.UserID, Username: claims.Username}, nil
}

// MaxAge is the configured token lifetime, zero for browser-session tokens.
func (s *SessionService) MaxAge() time.Duration {
	return s.maxAge
}

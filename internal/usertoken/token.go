package usertoken

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every verification failure: bad signature, wrong
// claims, expiry, or a missing subject.
var ErrInvalidToken = errors.New("invalid token")

const (
	defaultIssuer   = "phytoguard"
	defaultAudience = "phytoguard-api"
	defaultTTL      = 24 * time.Hour
	defaultLeeway   = 30 * time.Second
)

// Config customizes token claims and lifetime.
type Config struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
	Leeway   time.Duration
}

// Manager issues and verifies HS256 session tokens.
type Manager struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	leeway   time.Duration
}

// NewManager builds a token manager from the shared signing secret.
func NewManager(cfg Config) (*Manager, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if len(secret) < 32 {
		return nil, errors.New("token secret must be at least 32 characters")
	}
	m := &Manager{
		secret:   []byte(secret),
		issuer:   strings.TrimSpace(cfg.Issuer),
		audience: strings.TrimSpace(cfg.Audience),
		ttl:      cfg.TTL,
		leeway:   cfg.Leeway,
	}
	if m.issuer == "" {
		m.issuer = defaultIssuer
	}
	if m.audience == "" {
		m.audience = defaultAudience
	}
	if m.ttl <= 0 {
		m.ttl = defaultTTL
	}
	if m.leeway <= 0 {
		m.leeway = defaultLeeway
	}
	return m, nil
}

// Issue creates a signed token for the user ID.
func (m *Manager) Issue(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", errors.New("user id required")
	}
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    m.issuer,
		Audience:  jwt.ClaimStrings{m.audience},
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify validates a token and returns its subject (the user ID).
func (m *Manager) Verify(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidToken
	}
	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(m.leeway),
	)
	if err != nil || !parsed.Valid {
		if err == nil {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", fmt.Errorf("%w: subject missing", ErrInvalidToken)
	}
	return claims.Subject, nil
}

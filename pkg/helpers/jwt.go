package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every session-token failure: bad signature,
// malformed payload, or natural expiry. Callers get no finer distinction.
var ErrInvalidToken = errors.New("invalid token")

// JWTManager issues and validates signed bearer session tokens. The
// signing secret is process-wide and immutable after construction; expiry
// is enforced at validation time, not issuance. There is no revocation
// list: a token stays valid until it expires, and the account's is_active
// flag is re-checked on every authenticated request instead.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var defaultManager *JWTManager

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	m := &JWTManager{secret: []byte(secret), ttl: ttl, now: time.Now}
	defaultManager = m
	return m
}

// DefaultJWT returns the last constructed JWTManager (used for auto-wiring routes)
func DefaultJWT() *JWTManager { return defaultManager }

// WithClock swaps the time source, for deterministic expiry tests.
func (m *JWTManager) WithClock(now func() time.Time) *JWTManager {
	m.now = now
	return m
}

// TTL returns the configured session lifetime.
func (m *JWTManager) TTL() time.Duration { return m.ttl }

type Claims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// GenerateAccessToken signs a session token bound to the user's stable id.
func (m *JWTManager) GenerateAccessToken(userID int64) (string, time.Time, error) {
	nw := m.now()
	exp := nw.Add(m.ttl)
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(nw),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.secret)
	return s, exp, err
}

// ParseAccessToken validates signature and expiry and returns the claims.
// Every failure mode collapses into ErrInvalidToken.
func (m *JWTManager) ParseAccessToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

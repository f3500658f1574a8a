package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTManager issues and validates the gateway's own access tokens.
type JWTManager struct {
	AccessSecret []byte
	AccessTTL    time.Duration
}

var defaultManager *JWTManager

func NewJWTManager(accessSecret string, accessTTL time.Duration) *JWTManager {
	m := &JWTManager{
		AccessSecret: []byte(accessSecret),
		AccessTTL:    accessTTL,
	}
	defaultManager = m
	return m
}

// DefaultJWT returns the last constructed JWTManager (used for auto-wiring routes)
func DefaultJWT() *JWTManager { return defaultManager }

type Claims struct {
	UserID    string `json:"uid"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func (m *JWTManager) GenerateAccessToken(userID, sessionID string) (string, time.Time, error) {
	exp := time.Now().Add(m.AccessTTL)
	claims := &Claims{
		UserID:    userID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.AccessSecret)
	return s, exp, err
}

func (m *JWTManager) ParseAccessToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.AccessSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// TokenExpiry reads the exp claim of a token issued by someone else, without
// verifying its signature. ok is false when the token carries no exp.
func TokenExpiry(tokenStr string) (exp time.Time, ok bool, err error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return time.Time{}, false, err
	}
	nd, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, false, err
	}
	if nd == nil {
		return time.Time{}, false, nil
	}
	return nd.Time, true, nil
}

// TokenExpired reports whether tokenStr is unreadable or past its exp at now.
func TokenExpired(tokenStr string, now time.Time) bool {
	exp, ok, err := TokenExpiry(tokenStr)
	if err != nil {
		return true
	}
	return ok && !now.Before(exp)
}

package utils

import (
	"errors"
	"fmt"
	"time"

	"go-fairway/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

// Claims for the primary auth token.
type Claims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// ChannelClaims for the scoped realtime token: valid only for one
// user on one group session channel.
type ChannelClaims struct {
	UserID    uint `json:"user_id"`
	SessionID uint `json:"session_id"`
	jwt.RegisteredClaims
}

func jwtSecret() []byte {
	return []byte(config.GlobalConfig.JWT.Secret)
}

// GenerateToken mints the login token for a user.
func GenerateToken(userID uint) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(config.GlobalConfig.JWT.Expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// ParseToken validates a login token and returns its claims.
func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return jwtSecret(), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// GenerateChannelToken mints a short-lived capability token that only
// authorizes attaching to the given session's realtime channel.
func GenerateChannelToken(userID, sessionID uint) (string, error) {
	ttl := config.GlobalConfig.JWT.ChannelTokenTTL
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	claims := ChannelClaims{
		UserID:    userID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// ParseChannelToken validates a realtime channel token.
func ParseChannelToken(tokenString string) (*ChannelClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ChannelClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return jwtSecret(), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*ChannelClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid channel token")
}

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type JWTClaims struct {
	UID         string `json:"uid"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"` // Role drives visibility filtering and RBAC
	jwt.RegisteredClaims
}

func GenerateJWT(identity Identity, key []byte, duration time.Duration) (string, error) {
	claims := &JWTClaims{
		UID:         identity.UID,
		DisplayName: identity.DisplayName,
		Role:        string(identity.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// ParseJWT validates the token and returns the identity it carries.
// The role is passed through untouched; consumers normalize it.
func ParseJWT(tokenString string, key []byte) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return key, nil
	})
	if err != nil {
		return Identity{}, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return Identity{}, errors.New("invalid token")
	}
	if claims.UID == "" {
		return Identity{}, errors.New("token has no uid")
	}
	return Identity{
		UID:         claims.UID,
		DisplayName: claims.DisplayName,
		Role:        Role(claims.Role),
	}, nil
}

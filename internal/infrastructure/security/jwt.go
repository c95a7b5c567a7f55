// Package security provides JWT token utilities
package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ValidateJWT validates a JWT token and returns the claims
func ValidateJWT(tokenString, jwtSecret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// GenerateAdminToken creates a signed JWT granting organizer access for the
// given TTL.
func GenerateAdminToken(jwtSecret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"role": "admin",
		"jti":  GenerateULID(),
		"iat":  time.Now().UTC().Unix(),
		"exp":  time.Now().UTC().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// ValidateAdminToken validates a JWT and checks that it carries the admin
// role claim.
func ValidateAdminToken(tokenString, jwtSecret string) error {
	claims, err := ValidateJWT(tokenString, jwtSecret)
	if err != nil {
		return err
	}
	if role, ok := claims["role"].(string); !ok || role != "admin" {
		return errors.New("token does not grant admin access")
	}
	return nil
}

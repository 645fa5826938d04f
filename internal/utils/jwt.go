package utils

import (
	"time" // Time for token expiration

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// Token lifetime. Sessions are long-lived and refreshed via /api/auth/refresh.
const tokenTTL = 30 * 24 * time.Hour

// Claims carried by every token. UserID and IsAdmin together form the
// authenticated principal consumed by the middleware.
type Claims struct {
	UserID               uint   `json:"user_id"`
	Username             string `json:"username"`
	Email                string `json:"email"`
	IsAdmin              bool   `json:"is_admin"`
	jwt.RegisteredClaims        // Standard JWT claims
}

// GenerateJWT creates a signed token for the given principal.
func GenerateJWT(userID uint, username, email string, isAdmin bool, secret string) (string, error) {
	claims := Claims{
		UserID:   userID,
		Username: username,
		Email:    email,
		IsAdmin:  isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseJWT parses and validates a token string.
func ParseJWT(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil // Return the secret key for validation
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}

// RefreshJWT issues a fresh token carrying the same principal as the given
// valid token, with a renewed expiry.
func RefreshJWT(tokenStr, secret string) (string, error) {
	claims, err := ParseJWT(tokenStr, secret)
	if err != nil {
		return "", err
	}
	return GenerateJWT(claims.UserID, claims.Username, claims.Email, claims.IsAdmin, secret)
}

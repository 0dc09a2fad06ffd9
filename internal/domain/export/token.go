package export

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims authorizes downloading one case's export artifact until the
// token expires.
type TokenClaims struct {
	RequestID string `json:"req"`
	jwt.RegisteredClaims
}

// NewDownloadToken mints a signed, expiring token for a case export.
func NewDownloadToken(secret []byte, requestID string, ttl time.Duration, now time.Time) (string, error) {
	claims := TokenClaims{
		RequestID: requestID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseDownloadToken validates a token and returns the case id it covers.
func ParseDownloadToken(secret []byte, tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid || claims.RequestID == "" {
		return "", errors.New("invalid download token")
	}
	return claims.RequestID, nil
}

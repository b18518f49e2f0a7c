package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// ParseUserID validates an HS256 token minted by the auth service and
// returns its subject as a user id.
func ParseUserID(tokenStr, secret string) (uint64, error) {
	tok, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, ErrInvalidToken
	}
	uid, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return uid, nil
}

// SignUserToken is a dev helper for issuing tokens locally; production
// tokens come from the auth service with the same secret.
func SignUserToken(userID uint64, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(userID, 10),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(secret))
}

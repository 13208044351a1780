package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Verification failures. Callers that face clients should collapse all
// of these into a generic unauthenticated response; the distinction
// exists for server-side logs.
var (
	ErrInvalidSignature = errors.New("token signature mismatch")
	ErrExpired          = errors.New("token expired")
	ErrMalformed        = errors.New("token malformed")
)

// TokenIssuer creates and verifies signed, time-limited identity
// tokens. The signing algorithm is pinned at construction: a token
// declaring any other algorithm in its header is rejected outright.
type TokenIssuer struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
}

func NewTokenIssuer(secret, algorithm string, expiryHours int) (*TokenIssuer, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing algorithm %q is not an HMAC method", algorithm)
	}
	return &TokenIssuer{
		secret: []byte(secret),
		method: method,
		ttl:    time.Duration(expiryHours) * time.Hour,
	}, nil
}

// Issue builds a token carrying {user_id, iat, exp} and signs it with
// the configured secret.
func (ti *TokenIssuer) Issue(userID int) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(ti.method, jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     now.Add(ti.ttl).Unix(),
	})
	return token.SignedString(ti.secret)
}

// Verify checks signature, algorithm, and expiry, then returns the
// embedded user id. It never touches storage.
func (ti *TokenIssuer) Verify(tokenString string) (int, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != ti.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ti.secret, nil
	})
	if err != nil {
		var vErr *jwt.ValidationError
		if errors.As(err, &vErr) {
			switch {
			case vErr.Errors&jwt.ValidationErrorExpired != 0:
				return 0, ErrExpired
			case vErr.Errors&jwt.ValidationErrorSignatureInvalid != 0:
				return 0, ErrInvalidSignature
			}
		}
		return 0, ErrMalformed
	}
	if !token.Valid {
		return 0, ErrMalformed
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrMalformed
	}
	if _, ok := claims["exp"].(float64); !ok {
		return 0, ErrMalformed
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, ErrMalformed
	}
	return int(userID), nil
}

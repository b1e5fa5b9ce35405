package ims

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DecodeClaims returns the claims of a JWT without verifying its signature.
// Tokens are only inspected locally; the services they are sent to verify them.
func DecodeClaims(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to decode access token: %w", err)
	}
	return claims, nil
}

// ClientIDFromToken returns the client_id claim, or "" when the token has none
func ClientIDFromToken(token string) (string, error) {
	claims, err := DecodeClaims(token)
	if err != nil {
		return "", err
	}
	clientID, _ := claims["client_id"].(string)
	return clientID, nil
}

// ExpiresAt returns the token expiry. IMS tokens carry created_at and
// expires_in in milliseconds instead of exp. ok is false when neither is present.
func ExpiresAt(token string) (time.Time, bool) {
	claims, err := DecodeClaims(token)
	if err != nil {
		return time.Time{}, false
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		return exp.Time, true
	}

	createdAt, ok1 := millis(claims["created_at"])
	expiresIn, ok2 := millis(claims["expires_in"])
	if !ok1 || !ok2 {
		return time.Time{}, false
	}
	return time.UnixMilli(createdAt + expiresIn), true
}

// IsExpired reports whether the token expired before now. Tokens without a
// known expiry are treated as valid.
func IsExpired(token string, now time.Time) bool {
	expiresAt, ok := ExpiresAt(token)
	if !ok {
		return false
	}
	return !now.Before(expiresAt)
}

// IsStageToken reports whether the token was issued by the stage IMS
func IsStageToken(token string) bool {
	claims, err := DecodeClaims(token)
	if err != nil {
		return false
	}
	as, _ := claims["as"].(string)
	return strings.Contains(as, "stg")
}

func millis(v any) (int64, bool) {
	switch t := v.(type) {
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		return n, err == nil
	case float64:
		return int64(t), true
	default:
		return 0, false
	}
}

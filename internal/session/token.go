package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Expired reports whether token is a JWT whose exp claim is not after now.
// The signature is not checked: the token is opaque to this service and
// only the remote API can verify it. Non-JWT tokens never expire here.
func Expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.Time.After(now)
}

package auth

import (
	"crypto/subtle"
)

// ComparePasscode performs a constant-time comparison of the caller-supplied
// passcode against the configured admin passcode. Execution time does not
// depend on where the first mismatching byte occurs.
func ComparePasscode(supplied, expected string) bool {
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(expected)) == 1
}

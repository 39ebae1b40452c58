package stripedata

import (
	"errors"
	"strings"
)

const (
	ModeTest = "test"
	ModeLive = "live"
)

var (
	ErrKeyRequired    = errors.New("stripe secret key is required")
	ErrInvalidKey     = errors.New("invalid Stripe secret key format")
	secretKeyPrefixes = []string{"sk_", "rk_"}
)

// ValidateKey checks that key looks like a secret or restricted key and
// returns its mode.
func ValidateKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrKeyRequired
	}
	valid := false
	for _, p := range secretKeyPrefixes {
		if strings.HasPrefix(key, p) {
			valid = true
			break
		}
	}
	if !valid {
		return "", ErrInvalidKey
	}
	if strings.Contains(key, "_live_") {
		return ModeLive, nil
	}
	return ModeTest, nil
}

package checkout

import (
	"crypto/rand"
	"fmt"
	"time"
)

const (
	orderNumberPrefix = "ORD"
	tokenAlphabet     = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	tokenLength       = 6
)

// generateOrderNumber produces a public order identifier of the form
// ORD-20260830-K7M2QX. Uniqueness is enforced by the database; callers retry
// on collision.
func generateOrderNumber(now time.Time) (string, error) {
	buf := make([]byte, tokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random token: %w", err)
	}
	for i, b := range buf {
		buf[i] = tokenAlphabet[int(b)%len(tokenAlphabet)]
	}
	return fmt.Sprintf("%s-%s-%s", orderNumberPrefix, now.Format("20060102"), buf), nil
}

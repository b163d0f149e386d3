package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// generateInvoiceNumber returns INV-YYYYMMDD-HHMMSS-mmm-RRRR in UTC.
// Uniqueness is still enforced by the store.
func generateInvoiceNumber(now time.Time) string {
	now = now.UTC()
	millis := now.Nanosecond() / int(time.Millisecond)

	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		n = big.NewInt(now.UnixNano() % 10000)
	}

	return fmt.Sprintf("INV-%s-%03d-%04d", now.Format("20060102-150405"), millis, n.Int64())
}

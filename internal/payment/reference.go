package payment

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// NewReference returns the order id sent to gateways, e.g.
// PAY-20251220-100000-123-0042.
func NewReference(now time.Time) string {
	now = now.UTC()

	millis := now.Nanosecond() / int(time.Millisecond)

	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		n = big.NewInt(now.UnixNano() % 10000)
	}

	return fmt.Sprintf("PAY-%s-%03d-%04d", now.Format("20060102-150405"), millis, n.Int64())
}

package checkout

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const orderNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewOrderNumber returns a display label like ORD-M1ABCDEF-7QX2. It is not
// guaranteed unique; the payment reference is the dedup key.
func NewOrderNumber(now time.Time) string {
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = orderNumberAlphabet[rand.IntN(len(orderNumberAlphabet))]
	}
	stamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	return "ORD-" + stamp + "-" + string(suffix)
}

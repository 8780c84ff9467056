package reference

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const paymentPrefix = "PMT"

// NewPayment returns a globally unique, human-shareable payment reference
// in the form PMT-<unix millis>-<random hex>.
func NewPayment() string {
	return fmt.Sprintf("%s-%d-%s", paymentPrefix, time.Now().UnixMilli(), randHex(6))
}

// IsPayment reports whether s looks like a reference produced by NewPayment.
// Loose check: used for routing and logging, never for auth.
func IsPayment(s string) bool {
	parts := strings.SplitN(s, "-", 3)
	return len(parts) == 3 && parts[0] == paymentPrefix && parts[1] != "" && parts[2] != ""
}

func randHex(nBytes int) string {
	b := make([]byte, nBytes)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

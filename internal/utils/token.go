package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateServiceToken generates an 8-character uppercase alphanumeric
// service token rendered as XXXX-XXXX.
func GenerateServiceToken() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return raw[:4] + "-" + raw[4:]
}

// GeneratePaymentReference generates a unique checkout reference.
func GeneratePaymentReference() string {
	return "TFX-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:12]
}

package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateServiceTokenFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}$`)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token := GenerateServiceToken()
		assert.Regexp(t, pattern, token)
		assert.False(t, seen[token], "tokens must not repeat: %s", token)
		seen[token] = true
	}
}

func TestGeneratePaymentReference(t *testing.T) {
	ref := GeneratePaymentReference()
	assert.Regexp(t, `^TFX-[A-Z0-9]{12}$`, ref)
	assert.NotEqual(t, ref, GeneratePaymentReference())
}

// Package credentials implements the TrueSight credential plane: API key
// generation, Argon2id hashing/verification, and the in-memory TTL cache
// that makes per-request authentication cheap.
package credentials

import (
	"crypto/rand"
	"fmt"
)

const (
	keyBodyLen  = 32
	keyAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	prefixLen   = 8
)

// GenerateAPIKey produces a plaintext API key of the form
// ts_{live|test}_<32 lowercase alphanumerics> and its 8-character prefix.
// environment values other than "live" (or "production") yield a test key.
func GenerateAPIKey(environment string) (fullKey string, prefix string, err error) {
	envPrefix := "ts_test_"
	if environment == "live" || environment == "production" {
		envPrefix = "ts_live_"
	}

	body, err := randomAlphanumeric(keyBodyLen)
	if err != nil {
		return "", "", fmt.Errorf("generate api key: %w", err)
	}

	fullKey = envPrefix + body
	prefix = fullKey[:prefixLen]
	return fullKey, prefix, nil
}

// randomAlphanumeric draws n characters uniformly from keyAlphabet using a
// cryptographically secure source, rejecting byte values that would bias the
// distribution (the alphabet has 36 symbols, not a power of two).
func randomAlphanumeric(n int) (string, error) {
	const maxByte = 256 - (256 % len(keyAlphabet))

	out := make([]byte, n)
	buf := make([]byte, 1)
	for i := 0; i < n; {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		if int(buf[0]) >= maxByte {
			continue
		}
		out[i] = keyAlphabet[int(buf[0])%len(keyAlphabet)]
		i++
	}
	return string(out), nil
}

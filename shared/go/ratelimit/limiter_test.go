package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_AllowsWithinBurst(t *testing.T) {
	r := NewRegistry(1, 5)
	for i := 0; i < 5; i++ {
		allowed, _ := r.Allow("tenant-a")
		assert.True(t, allowed)
	}
}

func TestRegistry_RejectsBeyondBurst(t *testing.T) {
	r := NewRegistry(1, 2)
	r.Allow("tenant-b")
	r.Allow("tenant-b")
	allowed, retryAfter := r.Allow("tenant-b")
	assert.False(t, allowed)
	assert.GreaterOrEqual(t, retryAfter.Seconds(), 1.0)
}

func TestRegistry_TracksTenantsIndependently(t *testing.T) {
	r := NewRegistry(1, 1)
	r.Allow("tenant-c")
	allowedOther, _ := r.Allow("tenant-d")
	assert.True(t, allowedOther)
}

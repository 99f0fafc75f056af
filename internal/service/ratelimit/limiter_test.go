package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_AllowIsPerKey(t *testing.T) {
	l := New(0.001, 2)
	assert.True(t, l.Allow("fred"))
	assert.True(t, l.Allow("fred"))
	assert.False(t, l.Allow("fred"))
	assert.True(t, l.Allow("yahoo"))
}

func TestLimiter_WaitHonoursContext(t *testing.T) {
	l := New(0.001, 1)
	assert.NoError(t, l.Wait(context.Background(), "k"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx, "k"))
}

func TestLimiter_Unlimited(t *testing.T) {
	l := New(0, 1)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("k"))
	}
}

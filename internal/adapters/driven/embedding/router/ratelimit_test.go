package router

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// waitWithin reports whether the limiter lets a call through within d.
func waitWithin(r *RateLimiter, d time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return r.Wait(ctx) == nil
}

func TestRateLimiter_Unlimited(t *testing.T) {
	r := NewRateLimiter(0)
	for i := 0; i < 100; i++ {
		assert.True(t, waitWithin(r, 10*time.Millisecond))
	}
}

func TestRateLimiter_Burst(t *testing.T) {
	r := NewRateLimiter(2)
	assert.True(t, waitWithin(r, 10*time.Millisecond))
	assert.True(t, waitWithin(r, 10*time.Millisecond))
	assert.False(t, waitWithin(r, 50*time.Millisecond))
}

func TestRateLimiter_BackoffBlocksWait(t *testing.T) {
	r := NewRateLimiter(0)
	r.RecordRateLimitError(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded)
}

func TestRateLimiter_BackoffExpires(t *testing.T) {
	r := NewRateLimiter(0)
	r.RecordRateLimitError(10 * time.Millisecond)

	assert.NoError(t, r.Wait(context.Background()))
	assert.True(t, waitWithin(r, 10*time.Millisecond))
}

package xretry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoBackoff(t *testing.T) {
	b := NewNoBackoff()
	for i := 1; i <= 5; i++ {
		assert.Zero(t, b.NextDelay(i))
	}
}

func TestFixedBackoff(t *testing.T) {
	assert.Equal(t, 200*time.Millisecond, NewFixedBackoff(200*time.Millisecond).NextDelay(7))
	assert.Zero(t, NewFixedBackoff(-time.Second).NextDelay(1))
}

func TestExponentialBackoff(t *testing.T) {
	t.Run("WithoutJitter", func(t *testing.T) {
		b := NewExponentialBackoff(
			WithInitialDelay(100*time.Millisecond),
			WithMaxDelay(time.Second),
			WithMultiplier(2),
			WithJitter(0),
		)

		assert.Equal(t, 100*time.Millisecond, b.NextDelay(0))
		assert.Equal(t, 100*time.Millisecond, b.NextDelay(1))
		assert.Equal(t, 200*time.Millisecond, b.NextDelay(2))
		assert.Equal(t, 400*time.Millisecond, b.NextDelay(3))
		assert.Equal(t, time.Second, b.NextDelay(5))
		assert.Equal(t, time.Second, b.NextDelay(10000))
	})

	t.Run("JitterWithinBounds", func(t *testing.T) {
		b := NewExponentialBackoff(
			WithInitialDelay(100*time.Millisecond),
			WithJitter(0.5),
		)
		for range 50 {
			d := b.NextDelay(1)
			assert.GreaterOrEqual(t, d, 50*time.Millisecond)
			assert.LessOrEqual(t, d, 150*time.Millisecond)
		}
	})

	t.Run("InvalidOptionsIgnored", func(t *testing.T) {
		b := NewExponentialBackoff(
			WithInitialDelay(-1),
			WithMaxDelay(0),
			WithMultiplier(0.5),
			WithJitter(5),
		)
		assert.Equal(t, 250*time.Millisecond, b.initialDelay)
		assert.Equal(t, 5*time.Second, b.maxDelay)
		assert.InDelta(t, 2.0, b.multiplier, 0)
		assert.InDelta(t, 1.0, b.jitter, 0)
	})

	t.Run("MaxBelowInitial", func(t *testing.T) {
		b := NewExponentialBackoff(
			WithInitialDelay(2*time.Second),
			WithMaxDelay(time.Second),
			WithJitter(0),
		)
		assert.Equal(t, 2*time.Second, b.NextDelay(3))
	})
}

func TestLinearBackoff(t *testing.T) {
	b := NewLinearBackoff(100*time.Millisecond, 50*time.Millisecond, 300*time.Millisecond)

	assert.Equal(t, 100*time.Millisecond, b.NextDelay(0))
	assert.Equal(t, 100*time.Millisecond, b.NextDelay(1))
	assert.Equal(t, 150*time.Millisecond, b.NextDelay(2))
	assert.Equal(t, 300*time.Millisecond, b.NextDelay(5))
	assert.Equal(t, 300*time.Millisecond, b.NextDelay(1<<30))

	flat := NewLinearBackoff(-time.Second, 0, 0)
	assert.Zero(t, flat.NextDelay(10))
}

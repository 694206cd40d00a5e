package circuit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// outcome is one recorded result: true for a primary success.
type outcome bool

const (
	ok   outcome = true
	fail outcome = false
)

func TestBreakerTransitions(t *testing.T) {
	tests := []struct {
		name      string
		opts      []Option
		outcomes  []outcome
		wantState State
		// index of the outcome that opened / closed the circuit, -1 for none
		openedAt int
		closedAt int
	}{
		{
			name:      "defaults tolerate four failures",
			outcomes:  []outcome{fail, fail, fail, fail},
			wantState: StateClosed,
			openedAt:  -1,
			closedAt:  -1,
		},
		{
			name:      "opens on the threshold failure",
			opts:      []Option{WithFailureThreshold(2)},
			outcomes:  []outcome{fail, fail, fail},
			wantState: StateOpen,
			openedAt:  1,
			closedAt:  -1,
		},
		{
			name:      "a success resets the failure streak",
			opts:      []Option{WithFailureThreshold(2)},
			outcomes:  []outcome{fail, ok, fail},
			wantState: StateClosed,
			openedAt:  -1,
			closedAt:  -1,
		},
		{
			name:      "closes after consecutive successes",
			opts:      []Option{WithFailureThreshold(1), WithSuccessThreshold(2)},
			outcomes:  []outcome{fail, ok, ok},
			wantState: StateClosed,
			openedAt:  0,
			closedAt:  2,
		},
		{
			name:      "a failure while open resets the success streak",
			opts:      []Option{WithFailureThreshold(1), WithSuccessThreshold(2)},
			outcomes:  []outcome{fail, ok, fail, ok},
			wantState: StateOpen,
			openedAt:  0,
			closedAt:  -1,
		},
		{
			name:      "non-positive thresholds keep the defaults",
			opts:      []Option{WithFailureThreshold(0), WithSuccessThreshold(-1)},
			outcomes:  []outcome{fail, fail, fail, fail, fail},
			wantState: StateOpen,
			openedAt:  4,
			closedAt:  -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("redis", tt.opts...)
			openedAt, closedAt := -1, -1
			for i, o := range tt.outcomes {
				var change StateChange
				if o == ok {
					_, change = b.RecordSuccess()
				} else {
					_, change = b.RecordFailure()
				}
				if change.Opened {
					openedAt = i
				}
				if change.Closed {
					closedAt = i
				}
			}
			assert.Equal(t, tt.wantState, b.State())
			assert.Equal(t, tt.openedAt, openedAt)
			assert.Equal(t, tt.closedAt, closedAt)
		})
	}
}

func TestBreakerRoutingHints(t *testing.T) {
	b := New("redis", WithFailureThreshold(1), WithSuccessThreshold(2))
	assert.Equal(t, "redis", b.Name())
	assert.Equal(t, "closed", b.State().String())

	useFallback, _ := b.RecordFailure()
	assert.True(t, useFallback)
	assert.Equal(t, "open", b.State().String())

	// Still open: the caller keeps using the fallback.
	usePrimary, _ := b.RecordSuccess()
	assert.False(t, usePrimary)

	usePrimary, _ = b.RecordSuccess()
	assert.True(t, usePrimary)
}

func TestBreakerProbesWhileOpen(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	b := New("redis",
		WithFailureThreshold(1),
		WithSuccessThreshold(1),
		WithProbeInterval(10*time.Second),
		WithClock(func() time.Time { return now }),
	)

	assert.True(t, b.AllowPrimary(), "closed circuit always allows")
	b.RecordFailure()
	require.True(t, b.IsOpen())

	assert.False(t, b.AllowPrimary(), "no probe right after opening")
	now = now.Add(9 * time.Second)
	assert.False(t, b.AllowPrimary())

	now = now.Add(time.Second)
	assert.True(t, b.AllowPrimary(), "one probe once the interval has passed")
	assert.False(t, b.AllowPrimary(), "only one probe per interval")

	b.RecordFailure()
	now = now.Add(10 * time.Second)
	require.True(t, b.AllowPrimary())
	_, change := b.RecordSuccess()
	assert.True(t, change.Closed)
	assert.True(t, b.AllowPrimary())
	assert.True(t, b.AllowPrimary())
}

func TestBreakerReset(t *testing.T) {
	b := New("redis", WithFailureThreshold(1))
	b.RecordFailure()
	require.True(t, b.IsOpen())

	b.Reset()
	assert.False(t, b.IsOpen())

	// Counters are cleared too: one failure reopens with threshold 1 only
	// because it is a fresh streak.
	_, change := b.RecordFailure()
	assert.True(t, change.Opened)
}

func TestBreakerConcurrentUse(t *testing.T) {
	b := New("redis", WithFailureThreshold(50))

	var wg sync.WaitGroup
	for range 100 {
		wg.Go(func() {
			b.RecordFailure()
		})
	}
	wg.Wait()

	assert.True(t, b.IsOpen())
}

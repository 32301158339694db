package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0s", FormatDuration(0))
	assert.Equal(t, "42s", FormatDuration(42*time.Second))
	assert.Equal(t, "1m 0s", FormatDuration(time.Minute))
	assert.Equal(t, "3h 0m 5s", FormatDuration(3*time.Hour+5*time.Second))
	assert.Equal(t, "2d 1h 2m 3s", FormatDuration(49*time.Hour+2*time.Minute+3*time.Second))
}

func TestCollect(t *testing.T) {
	s := Collect(context.Background(), time.Now().Add(-time.Minute))

	assert.GreaterOrEqual(t, s.Uptime, time.Minute)
	assert.Greater(t, s.Goroutines, 0)
	assert.NotEmpty(t, s.GoVersion)
	assert.NotEmpty(t, s.Memory())
}

func TestCount(t *testing.T) {
	assert.Equal(t, "1,234,567", Count(1234567))
}

func TestMemoryFallsBackToHeap(t *testing.T) {
	s := Stats{HeapAlloc: 2048}
	assert.Equal(t, "2.0 kB", s.Memory())

	s.RSS = 5 * 1000 * 1000
	assert.Equal(t, "5.0 MB", s.Memory())
}

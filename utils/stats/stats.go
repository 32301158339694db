package stats

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/process"
)

// Stats is a snapshot of the running process
type Stats struct {
	Uptime     time.Duration `json:"uptime"`
	RSS        uint64        `json:"rss"`
	HeapAlloc  uint64        `json:"heap_alloc"`
	CPUPercent float64       `json:"cpu_percent"`
	Goroutines int           `json:"goroutines"`
	GoVersion  string        `json:"go_version"`
}

// Collect gathers process stats. RSS and CPU fall back to zero when the OS refuses to report them.
func Collect(ctx context.Context, start time.Time) Stats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	s := Stats{
		Uptime:     time.Since(start),
		HeapAlloc:  ms.HeapAlloc,
		Goroutines: runtime.NumGoroutine(),
		GoVersion:  runtime.Version(),
	}

	p, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return s
	}

	if mem, err := p.MemoryInfoWithContext(ctx); err == nil && mem != nil {
		s.RSS = mem.RSS
	}

	if cpu, err := p.CPUPercentWithContext(ctx); err == nil {
		s.CPUPercent = cpu
	}

	return s
}

// Memory formats RSS, or the Go heap when RSS is unavailable
func (s Stats) Memory() string {
	if s.RSS == 0 {
		return humanize.Bytes(s.HeapAlloc)
	}

	return humanize.Bytes(s.RSS)
}

// UptimeString func
func (s Stats) UptimeString() string {
	return FormatDuration(s.Uptime)
}

// Started renders when the process started, like "3 hours ago"
func (s Stats) Started(now time.Time) string {
	return humanize.RelTime(now.Add(-s.Uptime), now, "ago", "from now")
}

// FormatDuration renders a duration as "2d 3h 4m 5s", dropping leading zero units
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return "0s"
	}

	d = d.Round(time.Second)
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if days > 0 || hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if days > 0 || hours > 0 || minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}

// Count formats a number with thousands separators
func Count(n int) string {
	return humanize.Comma(int64(n))
}

package viewmodels

// GetStatusResponse struct
type GetStatusResponse struct {
	Message       string `json:"message"`
	Version       string `json:"version"`
	Uptime        string `json:"uptime"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	LatencyMS     int64  `json:"latency_ms"`
	Guilds        int    `json:"guilds"`
	Memory        string `json:"memory"`
	Goroutines    int    `json:"goroutines"`
}

package health

import (
	"fmt"
	"runtime"
	"time"
)

// Uptime is the process uptime as reported by the public health endpoint.
type Uptime struct {
	Seconds   int64  `json:"seconds"`
	Formatted string `json:"formatted"`
}

// Memory holds heap and process memory figures rounded to whole megabytes.
type Memory struct {
	HeapUsed  string `json:"heap_used"`
	HeapTotal string `json:"heap_total"`
	Sys       string `json:"sys"`
}

// ProcessStats describes the running process.
type ProcessStats struct {
	Uptime     Uptime `json:"uptime"`
	Memory     Memory `json:"memory"`
	Goroutines int    `json:"goroutines"`
}

// Process samples runtime memory statistics and reports uptime d.
func Process(d time.Duration) ProcessStats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return ProcessStats{
		Uptime: Uptime{
			Seconds:   int64(d.Seconds()),
			Formatted: FormatUptime(d),
		},
		Memory: Memory{
			HeapUsed:  FormatMB(ms.HeapAlloc),
			HeapTotal: FormatMB(ms.HeapSys),
			Sys:       FormatMB(ms.Sys),
		},
		Goroutines: runtime.NumGoroutine(),
	}
}

// FormatUptime renders d as "Xh Ym Zs", truncating to whole seconds.
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%dh %dm %ds", total/3600, (total%3600)/60, total%60)
}

// FormatMB renders a byte count as whole megabytes, rounded to nearest.
func FormatMB(b uint64) string {
	const mb = 1024 * 1024
	return fmt.Sprintf("%d MB", (b+mb/2)/mb)
}

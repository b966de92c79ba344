// Package observability collects relay telemetry. Everything here is
// side-channel only: no component behaves differently based on what the
// monitor records.
package observability

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/shirou/gopsutil/process"
)

// RelayStats aggregates the relay counters for reporting.
type RelayStats struct {
	Connected    uint64            `json:"connected"`
	Disconnected uint64            `json:"disconnected"`
	Rejected     uint64            `json:"rejected"`
	Messages     uint64            `json:"messages"`
	Live         int64             `json:"live"`
	RSSMb        float64           `json:"rss_mb"`
	CPUPercent   float64           `json:"cpu_percent"`
	Languages    map[string]uint64 `json:"languages"`
}

// Monitor tracks connection and relay throughput with atomic counters,
// plus the detected language distribution of relayed content.
type Monitor struct {
	log *slog.Logger

	connected    atomic.Uint64
	disconnected atomic.Uint64
	rejected     atomic.Uint64
	messages     atomic.Uint64
	live         atomic.Int64

	mu        sync.Mutex
	languages map[string]uint64

	proc *process.Process
}

func NewMonitor(log *slog.Logger) *Monitor {
	// Process handle may be unavailable in exotic environments; stats
	// then simply omit the process figures.
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		proc = nil
	}
	return &Monitor{
		log:       log,
		languages: make(map[string]uint64),
		proc:      proc,
	}
}

func (m *Monitor) IncrConnected() {
	m.connected.Add(1)
	m.live.Add(1)
}

func (m *Monitor) IncrDisconnected() {
	m.disconnected.Add(1)
	m.live.Add(-1)
}

func (m *Monitor) IncrRejected() {
	m.rejected.Add(1)
}

// ObserveMessage records relay throughput and the detected language of
// the content. Detection is telemetry only and never gates the relay
// path.
func (m *Monitor) ObserveMessage(content string) {
	m.messages.Add(1)

	info := whatlanggo.Detect(content)
	if !info.IsReliable() {
		return
	}
	lang := whatlanggo.LangToString(info.Lang)

	m.mu.Lock()
	m.languages[lang]++
	m.mu.Unlock()
}

// Snapshot returns a point-in-time copy of every counter.
func (m *Monitor) Snapshot() RelayStats {
	stats := RelayStats{
		Connected:    m.connected.Load(),
		Disconnected: m.disconnected.Load(),
		Rejected:     m.rejected.Load(),
		Messages:     m.messages.Load(),
		Live:         m.live.Load(),
		Languages:    make(map[string]uint64),
	}

	m.mu.Lock()
	for lang, n := range m.languages {
		stats.Languages[lang] = n
	}
	m.mu.Unlock()

	if m.proc != nil {
		if mem, err := m.proc.MemoryInfo(); err == nil {
			stats.RSSMb = float64(mem.RSS) / 1024 / 1024
		}
		if cpu, err := m.proc.CPUPercent(); err == nil {
			stats.CPUPercent = cpu
		}
	}
	return stats
}

// Reporter periodically logs a stats snapshot. It implements
// contract.Worker so it can run under the supervisor.
type Reporter struct {
	monitor  *Monitor
	interval time.Duration
}

func NewReporter(monitor *Monitor, interval time.Duration) *Reporter {
	return &Reporter{monitor: monitor, interval: interval}
}

func (r *Reporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			stats := r.monitor.Snapshot()
			r.monitor.log.Info("relay stats",
				"live", stats.Live,
				"connected", stats.Connected,
				"disconnected", stats.Disconnected,
				"rejected", stats.Rejected,
				"messages", stats.Messages,
				"rss_mb", stats.RSSMb,
				"cpu_percent", stats.CPUPercent,
				"languages", stats.Languages,
			)
		}
	}
}

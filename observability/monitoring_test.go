package observability

import (
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestMonitor_Counters(t *testing.T) {
	req := require.New(t)
	m := NewMonitor(logs.GetLoggerFromLevel(slog.LevelDebug))

	m.IncrConnected()
	m.IncrConnected()
	m.IncrDisconnected()
	m.IncrRejected()
	m.ObserveMessage("hola")

	stats := m.Snapshot()
	req.Equal(uint64(2), stats.Connected)
	req.Equal(uint64(1), stats.Disconnected)
	req.Equal(uint64(1), stats.Rejected)
	req.Equal(uint64(1), stats.Messages)
	req.Equal(int64(1), stats.Live)
}

func TestMonitor_LanguageDistribution(t *testing.T) {
	req := require.New(t)
	m := NewMonitor(logs.GetLoggerFromLevel(slog.LevelDebug))

	// Long unambiguous text so the detector is confident
	m.ObserveMessage("This is a long and clearly written English sentence " +
		"about the behaviour of the chat relay under normal conditions.")

	stats := m.Snapshot()
	req.Equal(uint64(1), stats.Messages)
	total := uint64(0)
	for _, n := range stats.Languages {
		total += n
	}
	req.LessOrEqual(total, uint64(1))
}

func TestMonitor_SnapshotIsACopy(t *testing.T) {
	req := require.New(t)
	m := NewMonitor(logs.GetLoggerFromLevel(slog.LevelDebug))

	first := m.Snapshot()
	first.Languages["xx"] = 99

	second := m.Snapshot()
	req.NotContains(second.Languages, "xx")
}

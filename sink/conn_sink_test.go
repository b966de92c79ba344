package sink

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"interchat/domain"
	"interchat/domain/event"
)

func TestConn_ConsumeBuffersEvents(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	s := NewConn(log, 2, 10*time.Millisecond)

	evt := event.MessageCreated{Room: "es", Message: domain.NewSystemMessage("hola")}

	req.NoError(s.Consume(context.Background(), evt))
	req.NoError(s.Consume(context.Background(), evt))

	req.Len(s.Events, 2)
	got := <-s.Events
	req.Equal(evt, got)
}

func TestConn_ConsumeDropsWhenBufferStaysFull(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	s := NewConn(log, 1, 20*time.Millisecond)

	evt := event.MessageCreated{Room: "es", Message: domain.NewSystemMessage("hola")}
	req.NoError(s.Consume(context.Background(), evt))

	// Nobody drains the channel: the second event is dropped after the
	// delivery timeout instead of blocking the broadcast.
	start := time.Now()
	req.NoError(s.Consume(context.Background(), evt))
	req.GreaterOrEqual(time.Since(start), 20*time.Millisecond)
	req.Len(s.Events, 1)
}

func TestConn_ConsumeHonorsContextCancellation(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	s := NewConn(log, 1, time.Second)

	evt := event.MessageCreated{Room: "es", Message: domain.NewSystemMessage("hola")}
	req.NoError(s.Consume(context.Background(), evt))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Consume(ctx, evt)
	req.ErrorIs(err, context.Canceled)
}

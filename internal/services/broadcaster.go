package services

import (
	"context"

	"github.com/mtnvale/stridecoach-backend/internal/logger"
	"github.com/mtnvale/stridecoach-backend/internal/realtime/bus"
	"github.com/mtnvale/stridecoach-backend/internal/sse"
)

// Broadcaster routes realtime messages. With a bus configured, messages go
// through redis and come back to every instance's hub via the forwarder;
// without one they go straight to the local hub.
type Broadcaster struct {
	log *logger.Logger
	hub *sse.Hub
	bus bus.Bus
}

func NewBroadcaster(log *logger.Logger, hub *sse.Hub, b bus.Bus) *Broadcaster {
	return &Broadcaster{log: log.With("component", "Broadcaster"), hub: hub, bus: b}
}

func (b *Broadcaster) Broadcast(ctx context.Context, msg sse.Message) {
	if b == nil || b.hub == nil {
		return
	}
	if b.bus != nil {
		if err := b.bus.Publish(ctx, msg); err == nil {
			return
		} else {
			b.log.Warn("bus publish failed, falling back to local hub", "error", err, "channel", msg.Channel)
		}
	}
	b.hub.Broadcast(msg)
}

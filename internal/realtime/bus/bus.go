package bus

import (
	"context"

	"github.com/mtnvale/stridecoach-backend/internal/sse"
)

// Bus fans SSE messages out across API instances. A single-instance
// deployment runs without one; the hub then only reaches local clients.
type Bus interface {
	Publish(ctx context.Context, msg sse.Message) error
	StartForwarder(ctx context.Context, onMsg func(m sse.Message)) error
	Close() error
}

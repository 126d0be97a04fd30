package v1

import (
	"github.com/gosuda/pulse/internal/domain"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Events() domain.EventRepository
}

// Broadcaster abstracts the live-stream hub for handler testing.
// *ws.Hub satisfies this interface.
type Broadcaster interface {
	Publish(v any)
	ClientCount() int
}

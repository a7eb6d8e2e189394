package fileicon

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDSource hands out the scoping identifiers that namespace the clip paths and gradients
// of one render. Implementations must be safe for concurrent use and never repeat an id.
type IDSource interface {
	NextID() string
}

// CounterIDSource returns "1", "2", "3"...
type CounterIDSource struct {
	counter atomic.Uint64
}

// NextID implements IDSource.
func (s *CounterIDSource) NextID() string {
	return strconv.FormatUint(s.counter.Add(1), 10)
}

// UUIDSource returns random v7 UUIDs.
// Use it when icons rendered by several processes end up in the same document.
type UUIDSource struct{}

// NextID implements IDSource.
func (UUIDSource) NextID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

var processIDSource = &CounterIDSource{}

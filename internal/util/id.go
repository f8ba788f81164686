package util

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// NewID returns a random UUID used for events and function calls.
func NewID() string {
	return uuid.NewString()
}

var (
	runEntropyMu sync.Mutex
	runEntropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0) //nolint:gosec // ids, not secrets
)

// NewRunID returns a lexically sortable ULID for a single runner invocation,
// so log lines and stored events of one request sort together.
func NewRunID() string {
	return NewRunIDAt(time.Now())
}

// NewRunIDAt returns a run id for the given time.
func NewRunIDAt(t time.Time) string {
	runEntropyMu.Lock()
	defer runEntropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), runEntropy).String()
}

package poller

import (
	"context"
	"time"
)

// Fetcher retrieves the current image for one camera. Implementations
// classify every outcome into the returned attempt and never propagate
// transport errors to the caller.
type Fetcher interface {
	Fetch(ctx context.Context, camera Camera) FetchAttempt
}

// Sink durably stores a successful attempt. For failed attempts it performs
// no I/O and returns a zero SinkResult.
type Sink interface {
	Store(ctx context.Context, attempt FetchAttempt) SinkResult
}

// Clock abstracts wall-clock time and suspension so the scheduler can be
// tested with a virtual clock.
type Clock interface {
	Now() time.Time
	// Sleep suspends until d elapses or ctx is done, returning ctx.Err()
	// in the latter case. Non-positive durations return immediately.
	Sleep(ctx context.Context, d time.Duration) error
}

// Reporter surfaces a finished cycle. Implementations own their failure
// handling; reporting never affects the run.
type Reporter interface {
	Report(ctx context.Context, report CycleReport)
}

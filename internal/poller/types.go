// Package poller defines the core types and the scheduling loop for the
// camera collection run.
package poller

import "time"

// Camera describes one fixed traffic camera known at startup.
type Camera struct {
	// ID is the upstream camera identifier, unique within a registry.
	ID string
	// ImageEndpoint, when set, is a direct URL for the camera's current
	// image. When empty the fetcher resolves the image location through
	// the upstream camera directory.
	ImageEndpoint string
	Latitude      *float64
	Longitude     *float64
}

// FetchAttempt is the result of exactly one image retrieval for one camera
// in one cycle. An attempt either succeeded (Body/ContentType are set) or
// failed (FailReason is set); the constructors below keep the two states
// mutually exclusive.
type FetchAttempt struct {
	CameraID    string
	AttemptedAt time.Time

	Body        []byte
	ContentType string
	SourceURL   string

	FailReason string
}

// NewSuccessAttempt builds a successful attempt carrying the image payload.
func NewSuccessAttempt(cameraID string, at time.Time, body []byte, contentType, sourceURL string) FetchAttempt {
	return FetchAttempt{
		CameraID:    cameraID,
		AttemptedAt: at.UTC(),
		Body:        body,
		ContentType: contentType,
		SourceURL:   sourceURL,
	}
}

// NewFailedAttempt builds a failed attempt carrying only the reason.
func NewFailedAttempt(cameraID string, at time.Time, reason string) FetchAttempt {
	if reason == "" {
		reason = "unknown failure"
	}
	return FetchAttempt{
		CameraID:    cameraID,
		AttemptedAt: at.UTC(),
		FailReason:  reason,
	}
}

// Succeeded reports whether the attempt produced an image payload.
func (a FetchAttempt) Succeeded() bool {
	return a.FailReason == ""
}

// SinkResult describes what the persistence sink did with one attempt.
// Stored is the primary success criterion: a failed mirror copy leaves
// Stored true and records the error in MirrorErr.
type SinkResult struct {
	Stored    bool
	Path      string
	MirrorKey string
	MirrorErr error
	Err       error
}

// CycleReport aggregates one polling cycle. It is final only after every
// camera of the cycle has reported (or the cycle was skipped entirely).
type CycleReport struct {
	RunID         string    `json:"run_id"`
	Cycle         int       `json:"cycle"`
	StartedAt     time.Time `json:"started_at"`
	Skipped       bool      `json:"skipped"`
	Attempted     int       `json:"attempted"`
	Succeeded     int       `json:"succeeded"`
	Failed        int       `json:"failed"`
	FailedCameras []string  `json:"failed_cameras,omitempty"`
}

// RunSummary totals an entire run.
type RunSummary struct {
	RunID         string
	StartedAt     time.Time
	EndedAt       time.Time
	Cycles        int
	SkippedCycles int
	Attempts      int
	Successes     int
	Failures      int
	Canceled      bool
}

package models

type SubmissionState int

const (
	StateIdle SubmissionState = iota
	StateAwaitingResponse
	StatePlayingBack
	StateFailed
)

func (s SubmissionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingResponse:
		return "awaitingResponse"
	case StatePlayingBack:
		return "playingBack"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Busy reports whether a submission is in flight.
func (s SubmissionState) Busy() bool {
	return s == StateAwaitingResponse || s == StatePlayingBack
}

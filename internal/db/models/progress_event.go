package models

import (
	"time"

	"github.com/google/uuid"
)

// ProgressEvent is the dual-written unit of the Progress Transport (spec.md
// §4.6): one per state transition and throttled progress tick.
type ProgressEvent struct {
	ID        uuid.UUID `db:"id"`
	VideoID   uuid.UUID `db:"video_id"`
	UserID    uuid.UUID `db:"user_id"`
	Stage     Stage     `db:"stage"`
	Progress  int       `db:"progress"`
	Message   *string   `db:"message"`
	Timestamp time.Time `db:"created_at"`
}

func NewProgressEvent(videoID, userID uuid.UUID, stage Stage, progress int, message *string) *ProgressEvent {
	return &ProgressEvent{
		ID:        uuid.New(),
		VideoID:   videoID,
		UserID:    userID,
		Stage:     stage,
		Progress:  progress,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// IsTerminal reports whether the event represents a stage transition to a
// terminal state (complete/error), which is always emitted immediately and
// never throttled or dropped under backpressure (spec.md §4.4, §4.7).
func (e *ProgressEvent) IsTerminal() bool {
	return e.Stage == StageComplete || e.Stage == StageError
}

package wsgateway

import (
	"time"

	"github.com/google/uuid"

	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
)

// Close codes for the Live Transport (spec.md §4.7/§6).
const (
	closeAuthTimeout    = 4001
	closeAuthFailed     = 4003
	closeBackpressure   = 4008
	authDeadlineDefault = 5 * time.Second
)

// clientFrame is the union of every frame type a client may send. Only the
// fields relevant to Type are populated.
type clientFrame struct {
	Type     string     `json:"type"`
	Token    string     `json:"token,omitempty"`
	Since    *time.Time `json:"since,omitempty"`
	VideoIDs []string   `json:"video_ids,omitempty"`
}

const (
	frameAuth    = "auth"
	frameHistory = "history"
	framePing    = "ping"
)

// serverFrame is the union of every frame type the server may send.
type serverFrame struct {
	Type      string    `json:"type"`
	VideoID   string    `json:"video_id,omitempty"`
	Stage     string    `json:"stage,omitempty"`
	Progress  int       `json:"progress,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
	Code      int       `json:"code,omitempty"`
}

const (
	frameAuthOK     = "auth_ok"
	frameAuthFailed = "auth_failed"
	frameProgress   = "progress"
	framePong       = "pong"
	frameError      = "error"
)

func progressFrame(e *models.ProgressEvent) serverFrame {
	msg := ""
	if e.Message != nil {
		msg = *e.Message
	}
	return serverFrame{
		Type:      frameProgress,
		VideoID:   e.VideoID.String(),
		Stage:     string(e.Stage),
		Progress:  e.Progress,
		Message:   msg,
		Timestamp: e.Timestamp,
	}
}

func parseVideoIDs(raw []string) []uuid.UUID {
	if len(raw) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		if id, err := uuid.Parse(r); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

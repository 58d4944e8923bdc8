package jobqueue

import (
	"encoding/json"
	"fmt"
)

// TypeVideoProcess is the single asynq task type driving the self-chaining
// enrichment pipeline (spec.md §4.4): each stage re-enqueues itself under
// this type until the video reaches StageComplete or StageError.
const TypeVideoProcess = "video:process"

// VideoProcessPayload identifies the video sub-job a video:process task
// should advance. The current stage lives on the VideoJob row itself, not
// in the payload, so a requeued/retried task always reads fresh state.
type VideoProcessPayload struct {
	VideoJobID string `json:"video_job_id"`
	VideoID    string `json:"video_id"`
}

func NewVideoProcessPayload(videoJobID, videoID string) (*VideoProcessPayload, error) {
	if videoJobID == "" {
		return nil, fmt.Errorf("video job ID is required")
	}
	if videoID == "" {
		return nil, fmt.Errorf("video ID is required")
	}
	return &VideoProcessPayload{VideoJobID: videoJobID, VideoID: videoID}, nil
}

func (p *VideoProcessPayload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

func UnmarshalVideoProcessPayload(data []byte) (*VideoProcessPayload, error) {
	var payload VideoProcessPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal video process payload: %w", err)
	}
	return &payload, nil
}

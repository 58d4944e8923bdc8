package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/0ui-labs/youtube-bookmarks/internal/apperr"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/repository"
)

// GetJob handles GET /jobs/:job_id, returning the ingestion job and every
// per-video sub-job it spawned (spec.md §4.3 supplement "job status/detail").
func (h *Handlers) GetJob(c *gin.Context) {
	ctx := c.Request.Context()

	jobID, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid job id"))
		return
	}

	job, err := h.jobs.GetIngestionJobByID(ctx, jobID)
	if err != nil {
		respondError(c, notFoundOrWrap(err, "job", jobID.String()))
		return
	}

	videoJobs, _, err := h.jobs.ListVideoJobsByJobID(ctx, jobID, repository.VideoJobFilters{Limit: maxLimit})
	if err != nil {
		respondError(c, err)
		return
	}

	dto := IngestionJobDTO{
		ID:             job.ID,
		ListID:         job.ListID,
		TotalSubmitted: job.TotalSubmitted,
		TotalAccepted:  job.TotalAccepted,
		TotalRejected:  job.TotalRejected,
		CreatedAt:      job.CreatedAt,
		Videos:         make([]VideoJobDTO, 0, len(videoJobs)),
	}
	for _, vj := range videoJobs {
		dto.Videos = append(dto.Videos, videoJobToDTO(vj))
	}
	c.JSON(http.StatusOK, dto)
}

// ReplayProgress handles POST /jobs/:job_id/progress?since=<RFC3339>, the
// HTTP fallback for a client that missed WebSocket frames during a
// disconnect (spec.md §4.7 "Progress Transport"). The job's owning list
// determines which user's history to read.
func (h *Handlers) ReplayProgress(c *gin.Context) {
	ctx := c.Request.Context()

	jobID, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid job id"))
		return
	}

	sinceStr := c.Query("since")
	if sinceStr == "" {
		respondError(c, apperr.Validation("since query parameter is required"))
		return
	}
	since, err := time.Parse(time.RFC3339, sinceStr)
	if err != nil {
		respondError(c, apperr.Validation("since must be RFC3339, got %q", sinceStr))
		return
	}

	job, err := h.jobs.GetIngestionJobByID(ctx, jobID)
	if err != nil {
		respondError(c, notFoundOrWrap(err, "job", jobID.String()))
		return
	}

	list, err := h.lists.GetByID(ctx, job.ListID)
	if err != nil {
		respondError(c, notFoundOrWrap(err, "list", job.ListID.String()))
		return
	}

	videoJobs, _, err := h.jobs.ListVideoJobsByJobID(ctx, jobID, repository.VideoJobFilters{Limit: maxLimit})
	if err != nil {
		respondError(c, err)
		return
	}
	videoIDs := make([]uuid.UUID, len(videoJobs))
	for i, vj := range videoJobs {
		videoIDs[i] = vj.VideoID
	}

	events, err := h.history.ListSince(ctx, list.UserID, since, videoIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	dtos := make([]ProgressEventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, progressEventToDTO(e))
	}
	c.JSON(http.StatusOK, dtos)
}

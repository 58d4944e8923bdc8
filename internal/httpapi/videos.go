package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/0ui-labs/youtube-bookmarks/internal/apperr"
	"github.com/0ui-labs/youtube-bookmarks/internal/canonical"
	"github.com/0ui-labs/youtube-bookmarks/internal/db"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/repository"
	"github.com/0ui-labs/youtube-bookmarks/internal/fieldvalue"
	"github.com/0ui-labs/youtube-bookmarks/internal/ingest"
)

type bulkIngestRequest struct {
	URLs []string `json:"urls" binding:"required"`
}

type bulkIngestResponse struct {
	JobID         uuid.UUID `json:"job_id"`
	Accepted      int       `json:"accepted"`
	RejectedCount int       `json:"rejected_count"`
}

// BulkIngest handles POST /lists/:list_id/videos/bulk. Canonicalization and
// dedup is delegated to internal/ingest; a url already present in the list
// is accepted into the submission's count but not re-enqueued, so resending
// the same batch is a no-op for videos already being processed.
func (h *Handlers) BulkIngest(c *gin.Context) {
	ctx := c.Request.Context()

	listID, err := uuid.Parse(c.Param("list_id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid list id"))
		return
	}
	if _, err := h.lists.GetByID(ctx, listID); err != nil {
		respondError(c, apperr.New(apperr.KindIngestRejected, "list "+listID.String()+" does not exist"))
		return
	}

	var req bulkIngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body: %v", err))
		return
	}

	result := ingest.ParseText(strings.Join(req.URLs, "\n"))

	// Only urls that fail canonicalization count as rejected; a duplicate of
	// an accepted url is folded into it rather than rejected.
	rejected := 0
	for _, u := range req.URLs {
		if !canonical.Canonicalize(u).OK() {
			rejected++
		}
	}

	var toCreate []*models.Video
	for _, canonicalID := range result.IDs {
		_, err := h.videos.GetByCanonicalID(ctx, listID, canonicalID)
		if err == nil {
			continue // already in the list: accepted, not re-enqueued
		}
		if !db.IsNotFound(err) {
			respondError(c, err)
			return
		}
		toCreate = append(toCreate, models.NewVideo(listID, canonicalID))
	}

	job := models.NewIngestionJob(listID, len(req.URLs), len(result.IDs), rejected)
	if err := h.jobs.CreateIngestionJob(ctx, job); err != nil {
		respondError(c, err)
		return
	}

	for _, video := range toCreate {
		if err := h.videos.Create(ctx, video); err != nil {
			respondError(c, err)
			return
		}
		videoJob := models.NewVideoJob(job.ID, video.ID)
		if err := h.jobs.CreateVideoJob(ctx, videoJob); err != nil {
			respondError(c, err)
			return
		}
		if err := h.queue.EnqueueVideoProcess(ctx, videoJob); err != nil {
			respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusAccepted, bulkIngestResponse{
		JobID:         job.ID,
		Accepted:      len(result.IDs),
		RejectedCount: rejected,
	})
}

// ListVideos handles GET /lists/:list_id/videos. field_values carries only
// filled fields; available_fields is left out here since the union resolver
// is per-video and this route serves the list card view (spec.md §6).
func (h *Handlers) ListVideos(c *gin.Context) {
	ctx := c.Request.Context()

	listID, err := uuid.Parse(c.Param("list_id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid list id"))
		return
	}

	filters := repository.VideoFilters{Limit: parseLimit(c), Offset: parseOffset(c)}
	if status := c.Query("status"); status != "" {
		filters.Status = models.ProcessingStatus(status)
	}

	videos, total, err := h.videos.ListByListID(ctx, listID, filters)
	if err != nil {
		respondError(c, err)
		return
	}

	fieldsByID, err := h.fieldsByID(ctx, listID)
	if err != nil {
		respondError(c, err)
		return
	}

	videoIDs := make([]uuid.UUID, len(videos))
	for i, v := range videos {
		videoIDs[i] = v.ID
	}
	values, err := h.values.ListByVideoIDs(ctx, videoIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	valuesByVideo := make(map[uuid.UUID][]*models.VideoFieldValue, len(videos))
	for _, v := range values {
		valuesByVideo[v.VideoID] = append(valuesByVideo[v.VideoID], v)
	}

	dtos := make([]VideoDTO, 0, len(videos))
	for _, v := range videos {
		dto := videoToDTO(v)
		dto.FieldValues = filledValueDTOs(valuesByVideo[v.ID], fieldsByID)
		dtos = append(dtos, dto)
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Items:  dtos,
		Count:  len(dtos),
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
}

// GetVideo handles GET /videos/:id, returning filled field_values plus the
// full available_fields catalog from the Field-Union Resolver (spec.md §6).
func (h *Handlers) GetVideo(c *gin.Context) {
	ctx := c.Request.Context()

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid video id"))
		return
	}

	video, err := h.videos.GetByID(ctx, videoID)
	if err != nil {
		respondError(c, notFoundOrWrap(err, "video", videoID.String()))
		return
	}

	fieldsByID, err := h.fieldsByID(ctx, video.ListID)
	if err != nil {
		respondError(c, err)
		return
	}
	values, err := h.values.ListByVideoID(ctx, videoID)
	if err != nil {
		respondError(c, err)
		return
	}
	available, err := h.availableFields(ctx, video.ListID, videoID)
	if err != nil {
		respondError(c, err)
		return
	}

	dto := videoToDTO(video)
	dto.FieldValues = filledValueDTOs(values, fieldsByID)
	dto.AvailableFields = available
	c.JSON(http.StatusOK, dto)
}

type updateProgressRequest struct {
	WatchPosition int64 `json:"watch_position"`
}

// UpdateProgress handles PATCH /videos/:id/progress.
func (h *Handlers) UpdateProgress(c *gin.Context) {
	ctx := c.Request.Context()

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid video id"))
		return
	}

	var req updateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body: %v", err))
		return
	}
	if req.WatchPosition < 0 {
		respondError(c, apperr.Validation("watch_position must be >= 0"))
		return
	}

	video, err := h.videos.GetByID(ctx, videoID)
	if err != nil {
		respondError(c, notFoundOrWrap(err, "video", videoID.String()))
		return
	}

	video.SetWatchPosition(req.WatchPosition)
	if err := h.videos.Update(ctx, video); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, videoToDTO(video))
}

type fieldUpdateRequest struct {
	FieldID uuid.UUID   `json:"field_id" binding:"required"`
	Value   interface{} `json:"value"`
}

type writeFieldsRequest struct {
	Updates []fieldUpdateRequest `json:"updates" binding:"required"`
}

// WriteFields handles PUT /videos/:id/fields, the batch field-value write
// of spec.md §4.10.
func (h *Handlers) WriteFields(c *gin.Context) {
	ctx := c.Request.Context()

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid video id"))
		return
	}

	video, err := h.videos.GetByID(ctx, videoID)
	if err != nil {
		respondError(c, notFoundOrWrap(err, "video", videoID.String()))
		return
	}

	var req writeFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body: %v", err))
		return
	}

	entries := make([]fieldvalue.RawEntry, len(req.Updates))
	for i, u := range req.Updates {
		entries[i] = fieldvalue.RawEntry{FieldID: u.FieldID, Value: u.Value}
	}

	if err := h.fieldStore.WriteBatch(ctx, videoID, entries); err != nil {
		respondError(c, err)
		return
	}

	fieldsByID, err := h.fieldsByID(ctx, video.ListID)
	if err != nil {
		respondError(c, err)
		return
	}
	values, err := h.values.ListByVideoID(ctx, videoID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, filledValueDTOs(values, fieldsByID))
}

// RetryVideo handles POST /videos/:id/retry (SPEC_FULL §5 supplement).
// Re-running from the first stage is idempotent if the video is not
// currently failed.
func (h *Handlers) RetryVideo(c *gin.Context) {
	ctx := c.Request.Context()

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid video id"))
		return
	}

	video, err := h.videos.GetByID(ctx, videoID)
	if err != nil {
		respondError(c, notFoundOrWrap(err, "video", videoID.String()))
		return
	}

	if video.ProcessingStatus != models.ProcessingFailed {
		c.JSON(http.StatusOK, videoToDTO(video))
		return
	}

	videoJob, err := h.jobs.GetVideoJobByVideoID(ctx, videoID)
	if err != nil {
		respondError(c, notFoundOrWrap(err, "video job", videoID.String()))
		return
	}

	videoJob.ResetForRetry(models.StageCreated)
	if err := h.jobs.UpdateVideoJob(ctx, videoJob); err != nil {
		respondError(c, err)
		return
	}

	video.ResetForRetry()
	if err := h.videos.Update(ctx, video); err != nil {
		respondError(c, err)
		return
	}

	if err := h.queue.EnqueueVideoProcess(ctx, videoJob); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, videoToDTO(video))
}

package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
	"github.com/0ui-labs/youtube-bookmarks/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	if logger.Log == nil {
		_ = logger.Init("error", "")
	}
}

type testDeps struct {
	h            *Handlers
	lists        *fakeListRepo
	videos       *fakeVideoRepo
	tags         *fakeTagRepo
	customFields *fakeCustomFieldRepo
	schemas      *fakeFieldSchemaRepo
	values       *fakeVideoFieldValueRepo
	jobs         *fakeJobRepo
	history      *fakeProgressEventRepo
	backups      *fakeFieldValueBackupRepo
	queue        *fakeEnqueuer
}

func newTestDeps() *testDeps {
	d := &testDeps{
		lists:        newFakeListRepo(),
		videos:       newFakeVideoRepo(),
		tags:         newFakeTagRepo(),
		customFields: newFakeCustomFieldRepo(),
		schemas:      newFakeFieldSchemaRepo(),
		values:       newFakeVideoFieldValueRepo(),
		jobs:         newFakeJobRepo(),
		history:      newFakeProgressEventRepo(),
		backups:      newFakeFieldValueBackupRepo(),
		queue:        &fakeEnqueuer{},
	}
	d.h = NewHandlers(d.lists, d.videos, d.tags, d.customFields, d.schemas, d.values, d.jobs, d.history, d.queue, d.backups)
	return d
}

func newJSONRequest(method, path string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func newTestContext(req *http.Request, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = params
	return c, w
}

func TestBulkIngest(t *testing.T) {
	t.Run("rejects ingest against an unknown list", func(t *testing.T) {
		d := newTestDeps()
		req := newJSONRequest(http.MethodPost, "/lists/x/videos/bulk", bulkIngestRequest{URLs: []string{"https://youtu.be/dQw4w9WgXcQ"}})
		c, w := newTestContext(req, gin.Params{{Key: "list_id", Value: uuid.New().String()}})

		d.h.BulkIngest(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("accepts and dedupes urls, enqueues one job per video", func(t *testing.T) {
		d := newTestDeps()
		list := models.NewList(uuid.New(), "My List")
		require.NoError(t, d.lists.Create(context.Background(), list))

		req := newJSONRequest(http.MethodPost, "/lists/"+list.ID.String()+"/videos/bulk", bulkIngestRequest{
			URLs: []string{
				"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
				"https://youtu.be/dQw4w9WgXcQ",
				"not-a-valid-id!!",
			},
		})
		ctx, w := newTestContext(req, gin.Params{{Key: "list_id", Value: list.ID.String()}})

		d.h.BulkIngest(ctx)

		require.Equal(t, http.StatusAccepted, w.Code)
		var resp bulkIngestResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Accepted)
		assert.Equal(t, 1, resp.RejectedCount)
		assert.Len(t, d.videos.byID, 1)
		assert.Len(t, d.queue.enqueued, 1)
	})

	t.Run("resubmitting the same url accepts without re-enqueueing", func(t *testing.T) {
		d := newTestDeps()
		list := models.NewList(uuid.New(), "My List")
		require.NoError(t, d.lists.Create(context.Background(), list))

		body := bulkIngestRequest{URLs: []string{"https://youtu.be/dQw4w9WgXcQ"}}
		req1 := newJSONRequest(http.MethodPost, "/lists/"+list.ID.String()+"/videos/bulk", body)
		ctx1, _ := newTestContext(req1, gin.Params{{Key: "list_id", Value: list.ID.String()}})
		d.h.BulkIngest(ctx1)
		require.Len(t, d.queue.enqueued, 1)

		req2 := newJSONRequest(http.MethodPost, "/lists/"+list.ID.String()+"/videos/bulk", body)
		ctx2, w2 := newTestContext(req2, gin.Params{{Key: "list_id", Value: list.ID.String()}})
		d.h.BulkIngest(ctx2)

		require.Equal(t, http.StatusAccepted, w2.Code)
		var resp bulkIngestResponse
		require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Accepted)
		assert.Len(t, d.videos.byID, 1, "no duplicate video row created")
		assert.Len(t, d.queue.enqueued, 1, "already-ingested video is not re-enqueued")
	})
}

func TestGetVideo(t *testing.T) {
	t.Run("404s for an unknown video id", func(t *testing.T) {
		d := newTestDeps()
		req := httptest.NewRequest(http.MethodGet, "/videos/x", nil)
		ctx, w := newTestContext(req, gin.Params{{Key: "id", Value: uuid.New().String()}})

		d.h.GetVideo(ctx)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("returns the video by id", func(t *testing.T) {
		d := newTestDeps()
		list := models.NewList(uuid.New(), "My List")
		require.NoError(t, d.lists.Create(context.Background(), list))
		video := models.NewVideo(list.ID, "dQw4w9WgXcQ")
		require.NoError(t, d.videos.Create(context.Background(), video))

		req := httptest.NewRequest(http.MethodGet, "/videos/"+video.ID.String(), nil)
		ctx, w := newTestContext(req, gin.Params{{Key: "id", Value: video.ID.String()}})

		d.h.GetVideo(ctx)

		require.Equal(t, http.StatusOK, w.Code)
		var dto VideoDTO
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dto))
		assert.Equal(t, video.CanonicalID, dto.CanonicalID)
	})
}

func TestRetryVideo(t *testing.T) {
	t.Run("no-op when the video is not in a failed state", func(t *testing.T) {
		d := newTestDeps()
		list := models.NewList(uuid.New(), "My List")
		require.NoError(t, d.lists.Create(context.Background(), list))
		video := models.NewVideo(list.ID, "dQw4w9WgXcQ")
		require.NoError(t, d.videos.Create(context.Background(), video))

		req := httptest.NewRequest(http.MethodPost, "/videos/"+video.ID.String()+"/retry", nil)
		ctx, w := newTestContext(req, gin.Params{{Key: "id", Value: video.ID.String()}})

		d.h.RetryVideo(ctx)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, d.queue.enqueued)
	})

	t.Run("resets stage and re-enqueues a failed video", func(t *testing.T) {
		d := newTestDeps()
		list := models.NewList(uuid.New(), "My List")
		require.NoError(t, d.lists.Create(context.Background(), list))
		video := models.NewVideo(list.ID, "dQw4w9WgXcQ")
		video.ProcessingStatus = models.ProcessingFailed
		require.NoError(t, d.videos.Create(context.Background(), video))

		job := models.NewIngestionJob(list.ID, 1, 1, 0)
		require.NoError(t, d.jobs.CreateIngestionJob(context.Background(), job))
		videoJob := models.NewVideoJob(job.ID, video.ID)
		videoJob.Stage = models.StageError
		videoJob.Status = models.JobStatusFailed
		require.NoError(t, d.jobs.CreateVideoJob(context.Background(), videoJob))

		req := httptest.NewRequest(http.MethodPost, "/videos/"+video.ID.String()+"/retry", nil)
		ctx, w := newTestContext(req, gin.Params{{Key: "id", Value: video.ID.String()}})

		d.h.RetryVideo(ctx)

		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, d.queue.enqueued, 1)
		assert.Equal(t, models.StageCreated, d.queue.enqueued[0].Stage)
		assert.Equal(t, models.JobStatusPending, d.queue.enqueued[0].Status)
	})
}

// Package httpapi implements the external HTTP surface of spec.md §6: the
// ingestion/catalog REST routes plus the metrics and WebSocket mounts, all
// gin handlers in the teacher's idiom (ShouldBindJSON, c.JSON, zap logging).
package httpapi

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/0ui-labs/youtube-bookmarks/internal/backup"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/repository"
	"github.com/0ui-labs/youtube-bookmarks/internal/fieldvalue"
	"github.com/0ui-labs/youtube-bookmarks/internal/metrics"
	"github.com/0ui-labs/youtube-bookmarks/internal/schema"
	"github.com/0ui-labs/youtube-bookmarks/internal/wsgateway"
)

// Enqueuer is the subset of jobqueue.Client a bulk-ingest/retry request
// needs, declared here so handler tests can substitute a fake.
type Enqueuer interface {
	EnqueueVideoProcess(ctx context.Context, videoJob *models.VideoJob) error
}

// Handlers holds every dependency the route handlers call into. It has no
// behavior of its own beyond wiring requests to the domain packages built
// for each component of spec.md §4.
type Handlers struct {
	lists        repository.ListRepository
	videos       repository.VideoRepository
	tags         repository.TagRepository
	customFields repository.CustomFieldRepository
	schemas      repository.FieldSchemaRepository
	values       repository.VideoFieldValueRepository
	jobs         repository.JobRepository
	history      repository.ProgressEventRepository
	queue        Enqueuer

	fieldStore *fieldvalue.Store
	schemaMgr  *schema.Manager
	backupMgr  *backup.Manager
}

// NewHandlers wires the route handlers to their backing repositories and
// domain managers.
func NewHandlers(
	lists repository.ListRepository,
	videos repository.VideoRepository,
	tags repository.TagRepository,
	customFields repository.CustomFieldRepository,
	schemas repository.FieldSchemaRepository,
	values repository.VideoFieldValueRepository,
	jobs repository.JobRepository,
	history repository.ProgressEventRepository,
	queue Enqueuer,
	backups repository.FieldValueBackupRepository,
) *Handlers {
	return &Handlers{
		lists:        lists,
		videos:       videos,
		tags:         tags,
		customFields: customFields,
		schemas:      schemas,
		values:       values,
		jobs:         jobs,
		history:      history,
		queue:        queue,
		fieldStore:   fieldvalue.NewStore(customFields, values),
		schemaMgr:    schema.NewManager(schemas, customFields),
		backupMgr:    backup.NewManager(backups, values, customFields, schemas),
	}
}

// NewRouter builds the gin engine: the CRUD surface sits behind auth, while
// /metrics (scraped, not browsed) and /ws (which authenticates per-connection
// over its own frame, spec.md §4.7) are mounted unauthenticated.
func NewRouter(h *Handlers, auth *APIKeyAuth, gw *wsgateway.Gateway) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/ws", gw.HandleWS)

	api := r.Group("/")
	api.Use(auth.Middleware())
	{
		api.POST("/lists", h.CreateList)
		api.GET("/lists", h.ListLists)
		api.GET("/lists/:list_id", h.GetList)
		api.DELETE("/lists/:list_id", h.DeleteList)

		api.POST("/lists/:list_id/videos/bulk", h.BulkIngest)
		api.GET("/lists/:list_id/videos", h.ListVideos)
		api.GET("/videos/:id", h.GetVideo)
		api.PATCH("/videos/:id/progress", h.UpdateProgress)
		api.PUT("/videos/:id/fields", h.WriteFields)
		api.POST("/videos/:id/retry", h.RetryVideo)

		api.GET("/lists/:list_id/custom-fields", h.ListCustomFields)
		api.POST("/lists/:list_id/custom-fields", h.CreateCustomField)
		api.PUT("/lists/:list_id/custom-fields/:field_id", h.UpdateCustomField)
		api.DELETE("/lists/:list_id/custom-fields/:field_id", h.DeleteCustomField)
		api.POST("/lists/:list_id/custom-fields/check-duplicate", h.CheckDuplicateField)

		api.GET("/lists/:list_id/schemas", h.ListSchemas)
		api.POST("/lists/:list_id/schemas", h.CreateSchema)
		api.PUT("/lists/:list_id/schemas/:schema_id", h.UpdateSchema)
		api.DELETE("/lists/:list_id/schemas/:schema_id", h.DeleteSchema)

		api.GET("/lists/:list_id/tags", h.ListTags)
		api.POST("/lists/:list_id/tags", h.CreateTag)
		api.PUT("/lists/:list_id/tags/:tag_id", h.UpdateTag)
		api.DELETE("/lists/:list_id/tags/:tag_id", h.DeleteTag)
		api.POST("/videos/:id/tags/:tag_id", h.AttachTag)
		api.DELETE("/videos/:id/tags/:tag_id", h.DetachTag)

		api.GET("/jobs/:job_id", h.GetJob)
		api.POST("/jobs/:job_id/progress", h.ReplayProgress)
	}

	return r
}

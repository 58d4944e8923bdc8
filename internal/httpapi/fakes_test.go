package httpapi

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/0ui-labs/youtube-bookmarks/internal/db"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/repository"
)

// In-memory fakes for every repository Handlers depends on, following the
// teacher's handler-test mock style (internal/handler/crud_test.go): no
// mocking framework, a map keyed by id, and an error injected by test code
// when a failure path needs exercising.

type fakeListRepo struct {
	byID map[uuid.UUID]*models.List
}

func newFakeListRepo() *fakeListRepo { return &fakeListRepo{byID: map[uuid.UUID]*models.List{}} }

func (f *fakeListRepo) Create(ctx context.Context, l *models.List) error {
	f.byID[l.ID] = l
	return nil
}
func (f *fakeListRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.List, error) {
	l, ok := f.byID[id]
	if !ok {
		return nil, db.WrapError(db.ErrNotFound, "get list")
	}
	return l, nil
}
func (f *fakeListRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.List, error) {
	var out []*models.List
	for _, l := range f.byID {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}
func (f *fakeListRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return db.WrapError(db.ErrNotFound, "delete list")
	}
	delete(f.byID, id)
	return nil
}

type fakeVideoRepo struct {
	byID map[uuid.UUID]*models.Video
}

func newFakeVideoRepo() *fakeVideoRepo { return &fakeVideoRepo{byID: map[uuid.UUID]*models.Video{}} }

func (f *fakeVideoRepo) Create(ctx context.Context, v *models.Video) error {
	for _, existing := range f.byID {
		if existing.ListID == v.ListID && existing.CanonicalID == v.CanonicalID {
			return db.WrapError(db.ErrDuplicateKey, "create video")
		}
	}
	f.byID[v.ID] = v
	return nil
}
func (f *fakeVideoRepo) Update(ctx context.Context, v *models.Video) error {
	if _, ok := f.byID[v.ID]; !ok {
		return db.WrapError(db.ErrNotFound, "update video")
	}
	f.byID[v.ID] = v
	return nil
}
func (f *fakeVideoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}
func (f *fakeVideoRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	v, ok := f.byID[id]
	if !ok {
		return nil, db.WrapError(db.ErrNotFound, "get video")
	}
	return v, nil
}
func (f *fakeVideoRepo) GetByCanonicalID(ctx context.Context, listID uuid.UUID, canonicalID string) (*models.Video, error) {
	for _, v := range f.byID {
		if v.ListID == listID && v.CanonicalID == canonicalID {
			return v, nil
		}
	}
	return nil, db.WrapError(db.ErrNotFound, "get video by canonical id")
}
func (f *fakeVideoRepo) ListByListID(ctx context.Context, listID uuid.UUID, filters repository.VideoFilters) ([]*models.Video, int, error) {
	var all []*models.Video
	for _, v := range f.byID {
		if v.ListID != listID {
			continue
		}
		if filters.Status != "" && v.ProcessingStatus != filters.Status {
			continue
		}
		all = append(all, v)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	total := len(all)

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filters.Offset
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

type fakeTagRepo struct {
	byID     map[uuid.UUID]*models.Tag
	attached map[uuid.UUID]map[uuid.UUID]bool // videoID -> tagID -> attached
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{byID: map[uuid.UUID]*models.Tag{}, attached: map[uuid.UUID]map[uuid.UUID]bool{}}
}

func (f *fakeTagRepo) Create(ctx context.Context, tag *models.Tag) error {
	f.byID[tag.ID] = tag
	return nil
}
func (f *fakeTagRepo) Update(ctx context.Context, tag *models.Tag) error {
	if _, ok := f.byID[tag.ID]; !ok {
		return db.WrapError(db.ErrNotFound, "update tag")
	}
	f.byID[tag.ID] = tag
	return nil
}
func (f *fakeTagRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}
func (f *fakeTagRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, db.WrapError(db.ErrNotFound, "get tag")
	}
	return t, nil
}
func (f *fakeTagRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Tag, error) {
	var out []*models.Tag
	for _, t := range f.byID {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}
func (f *fakeTagRepo) Attach(ctx context.Context, videoID, tagID uuid.UUID) error {
	if f.attached[videoID] == nil {
		f.attached[videoID] = map[uuid.UUID]bool{}
	}
	f.attached[videoID][tagID] = true
	return nil
}
func (f *fakeTagRepo) Detach(ctx context.Context, videoID, tagID uuid.UUID) error {
	delete(f.attached[videoID], tagID)
	return nil
}
func (f *fakeTagRepo) ListByVideoID(ctx context.Context, videoID uuid.UUID) ([]*models.Tag, error) {
	var out []*models.Tag
	for tagID := range f.attached[videoID] {
		out = append(out, f.byID[tagID])
	}
	return out, nil
}
func (f *fakeTagRepo) GetAttachedCategory(ctx context.Context, videoID uuid.UUID) (*models.Tag, error) {
	for tagID := range f.attached[videoID] {
		if t, ok := f.byID[tagID]; ok && t.IsVideoType {
			return t, nil
		}
	}
	return nil, db.WrapError(db.ErrNotFound, "get attached category")
}

type fakeCustomFieldRepo struct {
	byID map[uuid.UUID]*models.CustomField
}

func newFakeCustomFieldRepo() *fakeCustomFieldRepo {
	return &fakeCustomFieldRepo{byID: map[uuid.UUID]*models.CustomField{}}
}

func (f *fakeCustomFieldRepo) Create(ctx context.Context, field *models.CustomField) error {
	f.byID[field.ID] = field
	return nil
}
func (f *fakeCustomFieldRepo) Update(ctx context.Context, field *models.CustomField) error {
	if _, ok := f.byID[field.ID]; !ok {
		return db.WrapError(db.ErrNotFound, "update custom field")
	}
	f.byID[field.ID] = field
	return nil
}
func (f *fakeCustomFieldRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}
func (f *fakeCustomFieldRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.CustomField, error) {
	cf, ok := f.byID[id]
	if !ok {
		return nil, db.WrapError(db.ErrNotFound, "get custom field")
	}
	return cf, nil
}
func (f *fakeCustomFieldRepo) ListByListID(ctx context.Context, listID uuid.UUID) ([]*models.CustomField, error) {
	var out []*models.CustomField
	for _, cf := range f.byID {
		if cf.ListID == listID {
			out = append(out, cf)
		}
	}
	return out, nil
}
func (f *fakeCustomFieldRepo) ExistsByName(ctx context.Context, listID uuid.UUID, name string) (bool, error) {
	for _, cf := range f.byID {
		if cf.ListID == listID && strings.EqualFold(cf.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

type fakeFieldSchemaRepo struct {
	byID     map[uuid.UUID]*models.FieldSchema
	fieldsBy map[uuid.UUID][]*models.SchemaField
}

func newFakeFieldSchemaRepo() *fakeFieldSchemaRepo {
	return &fakeFieldSchemaRepo{
		byID:     map[uuid.UUID]*models.FieldSchema{},
		fieldsBy: map[uuid.UUID][]*models.SchemaField{},
	}
}

func (f *fakeFieldSchemaRepo) Create(ctx context.Context, s *models.FieldSchema) error {
	f.byID[s.ID] = s
	return nil
}
func (f *fakeFieldSchemaRepo) Update(ctx context.Context, s *models.FieldSchema) error {
	if _, ok := f.byID[s.ID]; !ok {
		return db.WrapError(db.ErrNotFound, "update schema")
	}
	f.byID[s.ID] = s
	return nil
}
func (f *fakeFieldSchemaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	delete(f.fieldsBy, id)
	return nil
}
func (f *fakeFieldSchemaRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.FieldSchema, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, db.WrapError(db.ErrNotFound, "get schema")
	}
	return s, nil
}
func (f *fakeFieldSchemaRepo) ListByListID(ctx context.Context, listID uuid.UUID) ([]*models.FieldSchema, error) {
	var out []*models.FieldSchema
	for _, s := range f.byID {
		if s.ListID == listID {
			out = append(out, s)
		}
	}
	return out, nil
}
func (f *fakeFieldSchemaRepo) GetWorkspaceDefault(ctx context.Context, listID uuid.UUID) (*models.FieldSchema, error) {
	for _, s := range f.byID {
		if s.ListID == listID && s.IsWorkspaceDefault {
			return s, nil
		}
	}
	return nil, db.WrapError(db.ErrNotFound, "get workspace default schema")
}
func (f *fakeFieldSchemaRepo) ListFields(ctx context.Context, schemaID uuid.UUID) ([]*models.SchemaField, error) {
	return f.fieldsBy[schemaID], nil
}
func (f *fakeFieldSchemaRepo) ReplaceFields(ctx context.Context, schemaID uuid.UUID, fields []*models.SchemaField) error {
	f.fieldsBy[schemaID] = fields
	return nil
}

type fakeVideoFieldValueRepo struct {
	byVideo map[uuid.UUID]map[uuid.UUID]*models.VideoFieldValue // videoID -> fieldID -> value
}

func newFakeVideoFieldValueRepo() *fakeVideoFieldValueRepo {
	return &fakeVideoFieldValueRepo{byVideo: map[uuid.UUID]map[uuid.UUID]*models.VideoFieldValue{}}
}

func (f *fakeVideoFieldValueRepo) Upsert(ctx context.Context, values []*models.VideoFieldValue) error {
	for _, v := range values {
		if f.byVideo[v.VideoID] == nil {
			f.byVideo[v.VideoID] = map[uuid.UUID]*models.VideoFieldValue{}
		}
		f.byVideo[v.VideoID][v.FieldID] = v
	}
	return nil
}
func (f *fakeVideoFieldValueRepo) ListByVideoID(ctx context.Context, videoID uuid.UUID) ([]*models.VideoFieldValue, error) {
	var out []*models.VideoFieldValue
	for _, v := range f.byVideo[videoID] {
		out = append(out, v)
	}
	return out, nil
}
func (f *fakeVideoFieldValueRepo) ListByVideoIDs(ctx context.Context, videoIDs []uuid.UUID) ([]*models.VideoFieldValue, error) {
	var out []*models.VideoFieldValue
	for _, id := range videoIDs {
		for _, v := range f.byVideo[id] {
			out = append(out, v)
		}
	}
	return out, nil
}
func (f *fakeVideoFieldValueRepo) DeleteByVideoAndFields(ctx context.Context, videoID uuid.UUID, fieldIDs []uuid.UUID) error {
	for _, fieldID := range fieldIDs {
		delete(f.byVideo[videoID], fieldID)
	}
	return nil
}

type fakeJobRepo struct {
	ingestionJobs map[uuid.UUID]*models.IngestionJob
	videoJobs     map[uuid.UUID]*models.VideoJob
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{ingestionJobs: map[uuid.UUID]*models.IngestionJob{}, videoJobs: map[uuid.UUID]*models.VideoJob{}}
}

func (f *fakeJobRepo) CreateIngestionJob(ctx context.Context, job *models.IngestionJob) error {
	f.ingestionJobs[job.ID] = job
	return nil
}
func (f *fakeJobRepo) GetIngestionJobByID(ctx context.Context, id uuid.UUID) (*models.IngestionJob, error) {
	j, ok := f.ingestionJobs[id]
	if !ok {
		return nil, db.WrapError(db.ErrNotFound, "get ingestion job")
	}
	return j, nil
}
func (f *fakeJobRepo) CreateVideoJob(ctx context.Context, job *models.VideoJob) error {
	f.videoJobs[job.ID] = job
	return nil
}
func (f *fakeJobRepo) UpdateVideoJob(ctx context.Context, job *models.VideoJob) error {
	if _, ok := f.videoJobs[job.ID]; !ok {
		return db.WrapError(db.ErrNotFound, "update video job")
	}
	f.videoJobs[job.ID] = job
	return nil
}
func (f *fakeJobRepo) GetVideoJobByID(ctx context.Context, id uuid.UUID) (*models.VideoJob, error) {
	j, ok := f.videoJobs[id]
	if !ok {
		return nil, db.WrapError(db.ErrNotFound, "get video job")
	}
	return j, nil
}
func (f *fakeJobRepo) GetVideoJobByAsynqTaskID(ctx context.Context, taskID string) (*models.VideoJob, error) {
	for _, j := range f.videoJobs {
		if j.AsynqTaskID != nil && *j.AsynqTaskID == taskID {
			return j, nil
		}
	}
	return nil, db.WrapError(db.ErrNotFound, "get video job by task id")
}
func (f *fakeJobRepo) GetVideoJobByVideoID(ctx context.Context, videoID uuid.UUID) (*models.VideoJob, error) {
	for _, j := range f.videoJobs {
		if j.VideoID == videoID {
			return j, nil
		}
	}
	return nil, db.WrapError(db.ErrNotFound, "get video job by video id")
}
func (f *fakeJobRepo) ListVideoJobsByJobID(ctx context.Context, jobID uuid.UUID, filters repository.VideoJobFilters) ([]*models.VideoJob, int, error) {
	var out []*models.VideoJob
	for _, j := range f.videoJobs {
		if j.JobID == jobID {
			out = append(out, j)
		}
	}
	return out, len(out), nil
}
func (f *fakeJobRepo) CancelVideoJob(ctx context.Context, id uuid.UUID) error {
	j, ok := f.videoJobs[id]
	if !ok {
		return db.WrapError(db.ErrNotFound, "cancel video job")
	}
	j.Canceled = true
	return nil
}

type fakeProgressEventRepo struct {
	byVideo map[uuid.UUID][]*models.ProgressEvent
}

func newFakeProgressEventRepo() *fakeProgressEventRepo {
	return &fakeProgressEventRepo{byVideo: map[uuid.UUID][]*models.ProgressEvent{}}
}

func (f *fakeProgressEventRepo) Append(ctx context.Context, event *models.ProgressEvent) error {
	f.byVideo[event.VideoID] = append(f.byVideo[event.VideoID], event)
	return nil
}
func (f *fakeProgressEventRepo) ListSince(ctx context.Context, userID uuid.UUID, since time.Time, videoIDs []uuid.UUID) ([]*models.ProgressEvent, error) {
	wanted := make(map[uuid.UUID]bool, len(videoIDs))
	for _, id := range videoIDs {
		wanted[id] = true
	}
	var out []*models.ProgressEvent
	for _, events := range f.byVideo {
		for _, e := range events {
			if e.UserID == userID && wanted[e.VideoID] && e.Timestamp.After(since) {
				out = append(out, e)
			}
		}
	}
	return out, nil
}
func (f *fakeProgressEventRepo) ListByVideoID(ctx context.Context, videoID uuid.UUID, limit int) ([]*models.ProgressEvent, error) {
	events := f.byVideo[videoID]
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

type fakeFieldValueBackupRepo struct {
	byKey map[[2]uuid.UUID]*models.FieldValueBackup
}

func newFakeFieldValueBackupRepo() *fakeFieldValueBackupRepo {
	return &fakeFieldValueBackupRepo{byKey: map[[2]uuid.UUID]*models.FieldValueBackup{}}
}

func (f *fakeFieldValueBackupRepo) Upsert(ctx context.Context, b *models.FieldValueBackup) error {
	f.byKey[[2]uuid.UUID{b.VideoID, b.CategoryID}] = b
	return nil
}
func (f *fakeFieldValueBackupRepo) Get(ctx context.Context, videoID, categoryID uuid.UUID) (*models.FieldValueBackup, error) {
	b, ok := f.byKey[[2]uuid.UUID{videoID, categoryID}]
	if !ok {
		return nil, db.WrapError(db.ErrNotFound, "get field value backup")
	}
	return b, nil
}
func (f *fakeFieldValueBackupRepo) Delete(ctx context.Context, videoID, categoryID uuid.UUID) error {
	delete(f.byKey, [2]uuid.UUID{videoID, categoryID})
	return nil
}

type fakeEnqueuer struct {
	enqueued []*models.VideoJob
}

func (f *fakeEnqueuer) EnqueueVideoProcess(ctx context.Context, job *models.VideoJob) error {
	f.enqueued = append(f.enqueued, job)
	return nil
}

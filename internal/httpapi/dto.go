package httpapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
)

// VideoDTO is the JSON-facing view of a Video, optionally carrying the
// filled field values (every list/detail route) and, for the detail route
// only, the full resolved field catalog (spec.md §6).
type VideoDTO struct {
	ID               uuid.UUID          `json:"id"`
	ListID           uuid.UUID          `json:"list_id"`
	CanonicalID      string             `json:"canonical_youtube_id"`
	Title            *string            `json:"title,omitempty"`
	Channel          *string            `json:"channel,omitempty"`
	ThumbnailURL     *string            `json:"thumbnail_url,omitempty"`
	DurationSeconds  *int64             `json:"duration_seconds,omitempty"`
	PublishedAt      *time.Time         `json:"published_at,omitempty"`
	ProcessingStatus string             `json:"processing_status"`
	FailureReason    *string            `json:"failure_reason,omitempty"`
	WatchPosition    *int64             `json:"watch_position,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
	FieldValues       []FieldValueDTO   `json:"field_values"`
	AvailableFields   []AvailableFieldDTO `json:"available_fields,omitempty"`
}

func videoToDTO(v *models.Video) VideoDTO {
	return VideoDTO{
		ID:               v.ID,
		ListID:           v.ListID,
		CanonicalID:      v.CanonicalID,
		Title:            v.Title,
		Channel:          v.Channel,
		ThumbnailURL:     v.ThumbnailURL,
		DurationSeconds:  v.DurationSeconds,
		PublishedAt:      v.PublishedAt,
		ProcessingStatus: string(v.ProcessingStatus),
		FailureReason:    v.FailureReason,
		WatchPosition:    v.WatchPosition,
		CreatedAt:        v.CreatedAt,
		UpdatedAt:        v.UpdatedAt,
		FieldValues:      []FieldValueDTO{},
	}
}

// FieldValueDTO is one filled value, named and typed for display without a
// second round trip to the custom-field catalog.
type FieldValueDTO struct {
	FieldID   uuid.UUID        `json:"field_id"`
	Name      string           `json:"name"`
	FieldType models.FieldType `json:"field_type"`
	Value     interface{}      `json:"value"`
}

// AvailableFieldDTO is one entry of the Field-Union Resolver's output: a
// field the video's attached tags/workspace schema make available, whether
// or not it currently has a value (spec.md §4.11).
type AvailableFieldDTO struct {
	FieldID      uuid.UUID        `json:"field_id"`
	Name         string           `json:"name"`
	FieldType    models.FieldType `json:"field_type"`
	ShowOnCard   bool             `json:"show_on_card"`
}

func valueDTOFor(fv *models.VideoFieldValue, field *models.CustomField) FieldValueDTO {
	dto := FieldValueDTO{FieldID: fv.FieldID, FieldType: field.FieldType}
	if field != nil {
		dto.Name = field.Name
	}
	switch {
	case fv.ValueText != nil:
		dto.Value = *fv.ValueText
	case fv.ValueNumeric != nil:
		dto.Value = *fv.ValueNumeric
	case fv.ValueBoolean != nil:
		dto.Value = *fv.ValueBoolean
	}
	return dto
}

// TagDTO is the JSON-facing view of a Tag.
type TagDTO struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Name        string     `json:"name"`
	Color       string     `json:"color"`
	IsVideoType bool       `json:"is_video_type"`
	SchemaID    *uuid.UUID `json:"schema_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func tagToDTO(t *models.Tag) TagDTO {
	return TagDTO{
		ID:          t.ID,
		UserID:      t.UserID,
		Name:        t.Name,
		Color:       t.Color,
		IsVideoType: t.IsVideoType,
		SchemaID:    t.SchemaID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// CustomFieldDTO is the JSON-facing view of a CustomField.
type CustomFieldDTO struct {
	ID        uuid.UUID       `json:"id"`
	ListID    uuid.UUID       `json:"list_id"`
	Name      string          `json:"name"`
	FieldType models.FieldType `json:"field_type"`
	Config    interface{}     `json:"config"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func customFieldToDTO(f *models.CustomField) CustomFieldDTO {
	return CustomFieldDTO{
		ID:        f.ID,
		ListID:    f.ListID,
		Name:      f.Name,
		FieldType: f.FieldType,
		Config:    rawJSON(f.Config),
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// rawJSON lets a json.RawMessage marshal as its parsed form rather than a
// base64 byte string, since CustomField.Config is already valid JSON.
type rawJSON []byte

func (r rawJSON) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

// FieldSchemaDTO is the JSON-facing view of a FieldSchema plus its ordered members.
type FieldSchemaDTO struct {
	ID                 uuid.UUID        `json:"id"`
	ListID             uuid.UUID        `json:"list_id"`
	Name               string           `json:"name"`
	IsWorkspaceDefault bool             `json:"is_workspace_default"`
	Fields             []SchemaFieldDTO `json:"fields"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// SchemaFieldDTO is one member of a FieldSchema's ordered field list.
type SchemaFieldDTO struct {
	FieldID      uuid.UUID `json:"field_id"`
	DisplayOrder int       `json:"display_order"`
	ShowOnCard   bool      `json:"show_on_card"`
}

func schemaFieldToDTO(sf *models.SchemaField) SchemaFieldDTO {
	return SchemaFieldDTO{FieldID: sf.FieldID, DisplayOrder: sf.DisplayOrder, ShowOnCard: sf.ShowOnCard}
}

// IngestionJobDTO is the JSON-facing view of an IngestionJob plus its
// child VideoJobs (spec.md §5 supplement "Job status/detail").
type IngestionJobDTO struct {
	ID             uuid.UUID     `json:"id"`
	ListID         uuid.UUID     `json:"list_id"`
	TotalSubmitted int           `json:"total_submitted"`
	TotalAccepted  int           `json:"total_accepted"`
	TotalRejected  int           `json:"total_rejected"`
	CreatedAt      time.Time     `json:"created_at"`
	Videos         []VideoJobDTO `json:"videos,omitempty"`
}

// VideoJobDTO is the JSON-facing view of a VideoJob.
type VideoJobDTO struct {
	ID        uuid.UUID `json:"id"`
	VideoID   uuid.UUID `json:"video_id"`
	Status    string    `json:"status"`
	Stage     string    `json:"stage"`
	Attempts  int       `json:"attempts"`
	LastError *string   `json:"last_error,omitempty"`
	Canceled  bool      `json:"canceled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func videoJobToDTO(j *models.VideoJob) VideoJobDTO {
	return VideoJobDTO{
		ID:        j.ID,
		VideoID:   j.VideoID,
		Status:    string(j.Status),
		Stage:     string(j.Stage),
		Attempts:  j.Attempts,
		LastError: j.LastError,
		Canceled:  j.Canceled,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// ProgressEventDTO is the JSON-facing view of a ProgressEvent, used by the
// HTTP replay endpoint (the WebSocket gateway has its own wire frame).
type ProgressEventDTO struct {
	VideoID   uuid.UUID `json:"video_id"`
	Stage     string    `json:"stage"`
	Progress  int       `json:"progress"`
	Message   *string   `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func progressEventToDTO(e *models.ProgressEvent) ProgressEventDTO {
	return ProgressEventDTO{VideoID: e.VideoID, Stage: string(e.Stage), Progress: e.Progress, Message: e.Message, Timestamp: e.Timestamp}
}

// ListDTO is the JSON-facing view of a List.
type ListDTO struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func listToDTO(l *models.List) ListDTO {
	return ListDTO{ID: l.ID, UserID: l.UserID, Name: l.Name, CreatedAt: l.CreatedAt, UpdatedAt: l.UpdatedAt}
}

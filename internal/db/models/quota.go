package models

import "time"

// QuotaInfo is today's aggregate YouTube Data API quota usage, backing the
// metadata-stage quota gate (SPEC_FULL §5.5).
type QuotaInfo struct {
	QuotaUsed       int
	QuotaLimit      int
	QuotaRemaining  int
	OperationsCount int
}

// APIQuotaUsage is the persisted per-day quota usage row.
type APIQuotaUsage struct {
	ID               int64     `db:"id"`
	Date             time.Time `db:"date"`
	QuotaUsed        int       `db:"quota_used"`
	QuotaLimit       int       `db:"quota_limit"`
	OperationsCount  int       `db:"operations_count"`
	VideosListCalls  int       `db:"videos_list_calls"`
	OtherCalls       int       `db:"other_calls"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

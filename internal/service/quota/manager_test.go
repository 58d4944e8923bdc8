package quota

import (
	"context"
	"testing"
	"time"

	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
	"github.com/0ui-labs/youtube-bookmarks/pkg/logger"
)

func init() {
	if logger.Log == nil {
		_ = logger.Init("error", "")
	}
}

type fakeQuotaRepo struct {
	info          *models.QuotaInfo
	incrementErr  error
	lastCost      int
	lastOperation string
}

func (f *fakeQuotaRepo) GetTodaysQuota(ctx context.Context) (*models.QuotaInfo, error) {
	return f.info, nil
}

func (f *fakeQuotaRepo) IncrementQuota(ctx context.Context, quotaCost int, operationType string) error {
	if f.incrementErr != nil {
		return f.incrementErr
	}
	f.lastCost = quotaCost
	f.lastOperation = operationType
	f.info.QuotaUsed += quotaCost
	f.info.QuotaRemaining = f.info.QuotaLimit - f.info.QuotaUsed
	return nil
}

func (f *fakeQuotaRepo) GetQuotaForDate(ctx context.Context, date time.Time) (*models.APIQuotaUsage, error) {
	return &models.APIQuotaUsage{Date: date, QuotaUsed: f.info.QuotaUsed, QuotaLimit: f.info.QuotaLimit}, nil
}

func (f *fakeQuotaRepo) GetQuotaHistory(ctx context.Context, days int) ([]*models.APIQuotaUsage, error) {
	return nil, nil
}

func (f *fakeQuotaRepo) CheckQuotaAvailable(ctx context.Context, requiredQuota int) (bool, error) {
	return f.info.QuotaRemaining >= requiredQuota, nil
}

func TestNewManager_InvalidThresholdDefaultsTo90(t *testing.T) {
	for _, threshold := range []int{0, -1, 101} {
		m := NewManager(&fakeQuotaRepo{}, threshold)
		if m.thresholdPercent != 90 {
			t.Errorf("threshold %d: thresholdPercent = %d, want 90", threshold, m.thresholdPercent)
		}
	}
}

func TestCheckQuotaAvailable_BelowThresholdAllowsOperation(t *testing.T) {
	repo := &fakeQuotaRepo{info: &models.QuotaInfo{QuotaUsed: 100, QuotaLimit: 10000, QuotaRemaining: 9900}}
	m := NewManager(repo, 90)

	ok, info, err := m.CheckQuotaAvailable(context.Background(), 50)
	if err != nil {
		t.Fatalf("CheckQuotaAvailable() error = %v", err)
	}
	if !ok {
		t.Error("expected quota to be available")
	}
	if info.QuotaUsed != 100 {
		t.Errorf("QuotaUsed = %d, want 100", info.QuotaUsed)
	}
}

func TestCheckQuotaAvailable_AtThresholdRejectsOperation(t *testing.T) {
	repo := &fakeQuotaRepo{info: &models.QuotaInfo{QuotaUsed: 9000, QuotaLimit: 10000, QuotaRemaining: 1000}}
	m := NewManager(repo, 90)

	ok, _, err := m.CheckQuotaAvailable(context.Background(), 1)
	if err != nil {
		t.Fatalf("CheckQuotaAvailable() error = %v", err)
	}
	if ok {
		t.Error("expected quota to be rejected once usage reaches the threshold")
	}
}

func TestCheckQuotaAvailable_RequiredCostWouldCrossThreshold(t *testing.T) {
	repo := &fakeQuotaRepo{info: &models.QuotaInfo{QuotaUsed: 8900, QuotaLimit: 10000, QuotaRemaining: 1100}}
	m := NewManager(repo, 90)

	ok, _, err := m.CheckQuotaAvailable(context.Background(), 200)
	if err != nil {
		t.Fatalf("CheckQuotaAvailable() error = %v", err)
	}
	if ok {
		t.Error("expected the operation's cost to push usage over the threshold")
	}
}

func TestRecordQuotaUsage_IncrementsViaRepository(t *testing.T) {
	repo := &fakeQuotaRepo{info: &models.QuotaInfo{QuotaUsed: 0, QuotaLimit: 10000}}
	m := NewManager(repo, 90)

	if err := m.RecordQuotaUsage(context.Background(), 5, "videos.list"); err != nil {
		t.Fatalf("RecordQuotaUsage() error = %v", err)
	}
	if repo.lastCost != 5 || repo.lastOperation != "videos.list" {
		t.Errorf("repo recorded (%d, %q), want (5, \"videos.list\")", repo.lastCost, repo.lastOperation)
	}
	if repo.info.QuotaUsed != 5 {
		t.Errorf("QuotaUsed = %d, want 5", repo.info.QuotaUsed)
	}
}

func TestGetQuotaInfo_ReturnsRepositorySnapshot(t *testing.T) {
	repo := &fakeQuotaRepo{info: &models.QuotaInfo{QuotaUsed: 42, QuotaLimit: 10000}}
	m := NewManager(repo, 90)

	info, err := m.GetQuotaInfo(context.Background())
	if err != nil {
		t.Fatalf("GetQuotaInfo() error = %v", err)
	}
	if info.QuotaUsed != 42 {
		t.Errorf("QuotaUsed = %d, want 42", info.QuotaUsed)
	}
}

package analysis

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("analysis record not found")
	ErrHistoryDisabled = errors.New("analysis history disabled")
)

// HistoryStore persists analysis records.
type HistoryStore interface {
	Save(ctx context.Context, rec *AnalysisRecord) error
	Get(ctx context.Context, id string) (*AnalysisRecord, error)
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&AnalysisRecord{})
}

func (r *Repository) Save(ctx context.Context, rec *AnalysisRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.UpdatedAt = rec.CreatedAt
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *Repository) Get(ctx context.Context, id string) (*AnalysisRecord, error) {
	var rec AnalysisRecord
	result := r.db.WithContext(ctx).First(&rec, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &rec, nil
}

// CleanupExpired deletes records older than ttl. A non-positive ttl keeps everything.
func (r *Repository) CleanupExpired(ctx context.Context, ttl time.Duration) (int64, error) {
	if ttl <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-ttl)
	result := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&AnalysisRecord{})
	return result.RowsAffected, result.Error
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"

	"montoit/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VerificationRepository stores one verification record per user.
type VerificationRepository interface {
	// UpsertPending replaces the user's record with a fresh pending job at version 1.
	UpsertPending(ctx context.Context, rec *models.VerificationRecord) error

	// GetByJobID loads the record owning jobID.
	GetByJobID(ctx context.Context, jobID string) (*models.VerificationRecord, error)

	// UpdateStatus writes status and result only if the record is still at
	// expectedVersion, and bumps the version. ErrStaleUpdate otherwise.
	UpdateStatus(ctx context.Context, jobID string, expectedVersion int, status models.VerificationStatus, result models.JSON) error
}

// RecordCache is the read-through cache in front of job id lookups.
type RecordCache interface {
	GetVerification(ctx context.Context, jobID string) (*models.VerificationRecord, error)
	CacheVerification(ctx context.Context, rec *models.VerificationRecord) error
	InvalidateVerification(ctx context.Context, jobID string) error
}

type verificationRepository struct {
	db    *gorm.DB
	cache RecordCache
}

// NewVerificationRepository creates the gorm backed repository. cache may be nil.
func NewVerificationRepository(db *gorm.DB, cache RecordCache) VerificationRepository {
	return &verificationRepository{db: db, cache: cache}
}

func (r *verificationRepository) UpsertPending(ctx context.Context, rec *models.VerificationRecord) error {
	// The previous job of this user disappears with the upsert.
	var previous models.VerificationRecord
	if err := r.db.WithContext(ctx).Select("job_id").Where("user_id = ?", rec.UserID).First(&previous).Error; err == nil {
		r.invalidate(ctx, previous.JobID)
	}

	rec.Status = models.StatusPending
	rec.Version = 1
	rec.ResultData = nil

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"job_id", "status", "job_type", "product", "id_type", "country_code",
			"callback_url", "partner_params", "result_data", "version",
			"updated_at", "deleted_at",
		}),
	}).Create(rec).Error
	if err != nil {
		return fmt.Errorf("%w: upsert verification for user %s: %v", ErrDatabaseOperation, rec.UserID, err)
	}
	return nil
}

func (r *verificationRepository) GetByJobID(ctx context.Context, jobID string) (*models.VerificationRecord, error) {
	if r.cache != nil {
		if rec, err := r.cache.GetVerification(ctx, jobID); err == nil && rec != nil {
			return rec, nil
		}
	}

	var rec models.VerificationRecord
	if err := r.db.WithContext(ctx).Where("job_id = ?", jobID).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("%w: load job %s: %v", ErrDatabaseOperation, jobID, err)
	}

	if r.cache != nil {
		if err := r.cache.CacheVerification(ctx, &rec); err != nil {
			log.Printf("Failed to cache verification %s: %v", jobID, err)
		}
	}
	return &rec, nil
}

func (r *verificationRepository) UpdateStatus(ctx context.Context, jobID string, expectedVersion int, status models.VerificationStatus, result models.JSON) error {
	updates := map[string]interface{}{
		"status":  status,
		"version": gorm.Expr("version + 1"),
	}
	if result != nil {
		updates["result_data"] = result
	}

	res := r.db.WithContext(ctx).
		Model(&models.VerificationRecord{}).
		Where("job_id = ? AND version = ?", jobID, expectedVersion).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("%w: update job %s: %v", ErrDatabaseOperation, jobID, res.Error)
	}

	r.invalidate(ctx, jobID)

	if res.RowsAffected == 0 {
		return ErrStaleUpdate
	}
	return nil
}

func (r *verificationRepository) invalidate(ctx context.Context, jobID string) {
	if r.cache == nil || jobID == "" {
		return
	}
	if err := r.cache.InvalidateVerification(ctx, jobID); err != nil {
		log.Printf("Warning: Failed to invalidate verification cache for %s: %v", jobID, err)
	}
}

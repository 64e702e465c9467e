package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"montoit/internal/models"

	"gorm.io/gorm"
)

// ProfileRepository reads profiles and sets the verified flag.
type ProfileRepository interface {
	GetByID(ctx context.Context, userID string) (*models.Profile, error)
	MarkVerified(ctx context.Context, userID string, at time.Time) error
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByID(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	if err := r.db.WithContext(ctx).First(&p, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("%w: load profile %s: %v", ErrDatabaseOperation, userID, err)
	}
	return &p, nil
}

func (r *profileRepository) MarkVerified(ctx context.Context, userID string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"is_verified":          true,
			"smile_id_verified":    true,
			"smile_id_verified_at": at,
		})
	if res.Error != nil {
		return fmt.Errorf("%w: mark profile %s verified: %v", ErrDatabaseOperation, userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

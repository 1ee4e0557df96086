package repository

import (
	"errors"

	"skilljumper_backend/internal/model"

	"gorm.io/gorm"
)

type ProfileRepository struct {
	DB *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

// FindByUserID returns the user's profile, creating an empty one on first
// access so every authenticated user always has a profile row.
func (r *ProfileRepository) FindByUserID(userID string) (*model.DLSProfile, error) {
	var profile model.DLSProfile
	err := r.DB.Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = model.DLSProfile{
			UserID:       userID,
			SkillDomains: map[string]model.SkillDomain{},
		}
		if err := r.DB.Create(&profile).Error; err != nil {
			return nil, err
		}
		return &profile, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) Update(profile *model.DLSProfile) error {
	return r.DB.Save(profile).Error
}

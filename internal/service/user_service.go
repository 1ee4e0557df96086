package service

import (
	"skilljumper_backend/internal/model"
	"skilljumper_backend/internal/repository"
	"skilljumper_backend/internal/util"
	"skilljumper_backend/pkg/logger"

	"go.uber.org/zap"
)

// UserService manages accounts and daily-living-skill profiles.
type UserService struct {
	UserRepo    *repository.UserRepository
	ProfileRepo *repository.ProfileRepository
}

func NewUserService(userRepo *repository.UserRepository, profileRepo *repository.ProfileRepository) *UserService {
	return &UserService{UserRepo: userRepo, ProfileRepo: profileRepo}
}

func (s *UserService) GetUser(id string) (*model.User, error) {
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		return nil, util.ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) UpdateUser(user *model.User) error {
	return s.UserRepo.Update(user)
}

// GetProfile returns the user's skill profile, creating an empty one on
// first access.
func (s *UserService) GetProfile(userID string) (*model.DLSProfile, error) {
	return s.ProfileRepo.FindByUserID(userID)
}

// UpdateProfile rewrites the profile. The user ID in the stored row always
// wins over whatever the payload carried.
func (s *UserService) UpdateProfile(userID string, profile *model.DLSProfile) error {
	existing, err := s.ProfileRepo.FindByUserID(userID)
	if err != nil {
		return err
	}
	profile.UUIDBase = existing.UUIDBase
	profile.UserID = userID
	return s.ProfileRepo.Update(profile)
}

// UpdateSkillLevel sets one skill domain's current level (0-100).
func (s *UserService) UpdateSkillLevel(userID, domain string, level int) error {
	profile, err := s.ProfileRepo.FindByUserID(userID)
	if err != nil {
		return err
	}
	if profile.SkillDomains == nil {
		profile.SkillDomains = map[string]model.SkillDomain{}
	}
	d := profile.SkillDomains[domain]
	d.CurrentLevel = util.ClampInt(level, 0, 100)
	profile.SkillDomains[domain] = d
	return s.ProfileRepo.Update(profile)
}

// AwardXP credits quest rewards after a completed attempt.
func (s *UserService) AwardXP(userID string, xp int) {
	if xp <= 0 {
		return
	}
	if err := s.UserRepo.AddXP(userID, xp); err != nil {
		logger.Log.Error("xp award failed", zap.String("userId", userID), zap.Error(err))
	}
}

func (s *UserService) TouchLastSeen(userID string) {
	if err := s.UserRepo.UpdateLastSeen(userID); err != nil {
		logger.Log.Warn("last seen update failed", zap.String("userId", userID), zap.Error(err))
	}
}

package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"skilljumper_backend/internal/model"
	"skilljumper_backend/internal/repository"
	"skilljumper_backend/internal/util"

	"github.com/google/uuid"
)

// CatalogService manages the quest catalog: admin CRUD and supporting
// material uploads.
type CatalogService struct {
	Repo    *repository.QuestRepository
	Storage *StorageService
}

func NewCatalogService(repo *repository.QuestRepository, storage *StorageService) *CatalogService {
	return &CatalogService{Repo: repo, Storage: storage}
}

func (s *CatalogService) GetQuest(ctx context.Context, id string) (*model.Quest, error) {
	quest, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, util.ErrQuestNotFound
	}
	return quest, nil
}

func (s *CatalogService) ListQuests(ctx context.Context, page, limit int) ([]*model.Quest, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.Repo.List(ctx, (page-1)*limit, limit)
}

func (s *CatalogService) CreateQuest(ctx context.Context, quest *model.Quest) error {
	if err := validateQuest(quest); err != nil {
		return err
	}
	return s.Repo.Create(ctx, quest)
}

func (s *CatalogService) UpdateQuest(ctx context.Context, quest *model.Quest) error {
	if err := validateQuest(quest); err != nil {
		return err
	}
	if _, err := s.Repo.GetByID(ctx, quest.ID); err != nil {
		return util.ErrQuestNotFound
	}
	return s.Repo.Update(ctx, quest)
}

func validateQuest(quest *model.Quest) error {
	if quest.Title == "" {
		return fmt.Errorf("title is required")
	}
	if quest.Category == "" {
		return fmt.Errorf("category is required")
	}
	if quest.DifficultyLevel < 1 || quest.DifficultyLevel > 100 {
		return fmt.Errorf("difficultyLevel must be between 1 and 100")
	}
	if quest.EstimatedDuration.Typical <= 0 {
		return fmt.Errorf("estimatedDuration.typical must be positive")
	}
	if quest.SuccessRate < 0 || quest.SuccessRate > 1 {
		return fmt.Errorf("successRate must be between 0 and 1")
	}
	if len(quest.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	seen := make(map[int]bool, len(quest.Steps))
	for _, step := range quest.Steps {
		if step.Order < 1 || step.Order > len(quest.Steps) || seen[step.Order] {
			return fmt.Errorf("step orders must be unique and contiguous starting at 1")
		}
		seen[step.Order] = true
	}
	return nil
}

// UploadMaterial stores an uploaded file and attaches it to the quest's
// supporting materials. Video files are probed before acceptance.
func (s *CatalogService) UploadMaterial(ctx context.Context, questID string, header *multipart.FileHeader, materialType model.MaterialType) (*model.Quest, error) {
	quest, err := s.Repo.GetByID(ctx, questID)
	if err != nil {
		return nil, util.ErrQuestNotFound
	}

	filename := fmt.Sprintf("materials/%s/%s%s", questID, uuid.New().String(), filepath.Ext(header.Filename))

	var url string
	if materialType == model.MaterialVideo {
		tmp := filepath.Join(os.TempDir(), filepath.Base(filename))
		if err := saveUpload(header, tmp); err != nil {
			return nil, err
		}
		defer os.Remove(tmp)
		url, _, err = s.Storage.UploadDemoVideo(ctx, filename, tmp)
		if err != nil {
			return nil, err
		}
	} else {
		src, err := header.Open()
		if err != nil {
			return nil, err
		}
		defer src.Close()
		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = util.MimeOctetStream
		}
		url, err = s.Storage.Upload(ctx, filename, src, header.Size, contentType)
		if err != nil {
			return nil, err
		}
	}

	quest.SupportingMaterials = append(quest.SupportingMaterials, model.SupportingMaterial{
		Type:    materialType,
		Content: header.Filename,
		URL:     url,
	})
	if err := s.Repo.Update(ctx, quest); err != nil {
		return nil, err
	}
	return quest, nil
}

func saveUpload(header *multipart.FileHeader, dst string) error {
	src, err := header.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.ReadFrom(src); err != nil {
		return err
	}
	return nil
}

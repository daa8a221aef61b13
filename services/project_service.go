package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"reachround/models"
	"reachround/utils"
)

type CreateProjectInput struct {
	Name              string `json:"name" validate:"required,max=200"`
	OneLiner          string `json:"one_liner" validate:"required,max=500"`
	Industry          string `json:"industry" validate:"max=100"`
	Stage             string `json:"stage" validate:"max=50"`
	TargetGeography   string `json:"target_geography" validate:"max=200"`
	FundingAsk        string `json:"funding_ask" validate:"max=200"`
	AdditionalContext string `json:"additional_context"`
}

// UpdateProjectInput applies only the fields that are present.
type UpdateProjectInput struct {
	Name              *string `json:"name" validate:"omitempty,min=1,max=200"`
	OneLiner          *string `json:"one_liner" validate:"omitempty,max=500"`
	Industry          *string `json:"industry" validate:"omitempty,max=100"`
	Stage             *string `json:"stage" validate:"omitempty,max=50"`
	TargetGeography   *string `json:"target_geography" validate:"omitempty,max=200"`
	FundingAsk        *string `json:"funding_ask" validate:"omitempty,max=200"`
	AdditionalContext *string `json:"additional_context"`
}

type ProjectService struct {
	db     *gorm.DB
	logger *logrus.Entry
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db, logger: logrus.WithField("service", "projects")}
}

func (s *ProjectService) List(ctx context.Context, userID uint) ([]models.Project, error) {
	projects := []models.Project{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&projects).Error
	return projects, err
}

func (s *ProjectService) Create(ctx context.Context, userID uint, in CreateProjectInput) (*models.Project, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.OneLiner = strings.TrimSpace(in.OneLiner)
	if err := utils.ValidateStruct(in); err != nil {
		return nil, validationError(err)
	}

	project := models.Project{
		UserID:            userID,
		Name:              in.Name,
		OneLiner:          in.OneLiner,
		Industry:          utils.NilIfEmpty(in.Industry),
		Stage:             utils.NilIfEmpty(in.Stage),
		TargetGeography:   utils.NilIfEmpty(in.TargetGeography),
		FundingAsk:        utils.NilIfEmpty(in.FundingAsk),
		AdditionalContext: utils.NilIfEmpty(in.AdditionalContext),
	}
	if err := s.db.WithContext(ctx).Create(&project).Error; err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"user_id": userID, "project_id": project.ID}).Info("project created")
	return &project, nil
}

func (s *ProjectService) Get(ctx context.Context, userID, projectID uint) (*models.Project, error) {
	return findProject(ctx, s.db, userID, projectID)
}

func (s *ProjectService) Update(ctx context.Context, userID, projectID uint, in UpdateProjectInput) (*models.Project, error) {
	project, err := findProject(ctx, s.db, userID, projectID)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(in); err != nil {
		return nil, validationError(err)
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, utils.Validation("name cannot be empty")
		}
		updates["name"] = name
	}
	if in.OneLiner != nil {
		updates["one_liner"] = strings.TrimSpace(*in.OneLiner)
	}
	optional := map[string]*string{
		"industry":           in.Industry,
		"stage":              in.Stage,
		"target_geography":   in.TargetGeography,
		"funding_ask":        in.FundingAsk,
		"additional_context": in.AdditionalContext,
	}
	for column, value := range optional {
		if value != nil {
			updates[column] = utils.NilIfEmpty(*value)
		}
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(project).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return findProject(ctx, s.db, userID, projectID)
}

// Delete removes the project and everything scoped to it in one transaction.
func (s *ProjectService) Delete(ctx context.Context, userID, projectID uint) error {
	project, err := findProject(ctx, s.db, userID, projectID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		emailIDs := tx.Model(&models.Email{}).Select("id").Where("project_id = ?", project.ID)
		if err := tx.Where("email_id IN (?)", emailIDs).Delete(&models.EmailVersion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Email{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Investor{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Campaign{}).Error; err != nil {
			return err
		}
		return tx.Delete(project).Error
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{"user_id": userID, "project_id": projectID}).Info("project deleted")
	return nil
}

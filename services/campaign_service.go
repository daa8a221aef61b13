package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"reachround/models"
	"reachround/utils"
)

type CreateCampaignInput struct {
	Name   string                `json:"name" validate:"required,max=200"`
	Ask    string                `json:"ask" validate:"required,max=500"`
	Status models.CampaignStatus `json:"status" validate:"omitempty,oneof=active paused closed"`
}

type UpdateCampaignInput struct {
	Name   *string                `json:"name" validate:"omitempty,min=1,max=200"`
	Ask    *string                `json:"ask" validate:"omitempty,min=1,max=500"`
	Status *models.CampaignStatus `json:"status" validate:"omitempty,oneof=active paused closed"`
}

type CampaignService struct {
	db     *gorm.DB
	logger *logrus.Entry
}

func NewCampaignService(db *gorm.DB) *CampaignService {
	return &CampaignService{db: db, logger: logrus.WithField("service", "campaigns")}
}

func (s *CampaignService) ListByProject(ctx context.Context, userID, projectID uint) ([]models.Campaign, error) {
	if _, err := findProject(ctx, s.db, userID, projectID); err != nil {
		return nil, err
	}
	campaigns := []models.Campaign{}
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC, id DESC").
		Find(&campaigns).Error
	return campaigns, err
}

func (s *CampaignService) Create(ctx context.Context, userID, projectID uint, in CreateCampaignInput) (*models.Campaign, error) {
	if _, err := findProject(ctx, s.db, userID, projectID); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Ask = strings.TrimSpace(in.Ask)
	if err := utils.ValidateStruct(in); err != nil {
		return nil, validationError(err)
	}
	if in.Status == "" {
		in.Status = models.CampaignActive
	}

	campaign := models.Campaign{ProjectID: projectID, Name: in.Name, Ask: in.Ask, Status: in.Status}
	if err := s.db.WithContext(ctx).Create(&campaign).Error; err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"project_id": projectID, "campaign_id": campaign.ID}).Info("campaign created")
	return &campaign, nil
}

func (s *CampaignService) Get(ctx context.Context, userID, campaignID uint) (*models.Campaign, error) {
	campaign, _, err := findCampaign(ctx, s.db, userID, campaignID)
	return campaign, err
}

func (s *CampaignService) Update(ctx context.Context, userID, campaignID uint, in UpdateCampaignInput) (*models.Campaign, error) {
	campaign, _, err := findCampaign(ctx, s.db, userID, campaignID)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(in); err != nil {
		return nil, validationError(err)
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Ask != nil {
		updates["ask"] = strings.TrimSpace(*in.Ask)
	}
	if in.Status != nil {
		updates["status"] = *in.Status
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(campaign).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	campaign, _, err = findCampaign(ctx, s.db, userID, campaignID)
	return campaign, err
}

// Delete removes the campaign and its emails. Investors stay in the project
// with their campaign cleared.
func (s *CampaignService) Delete(ctx context.Context, userID, campaignID uint) error {
	campaign, _, err := findCampaign(ctx, s.db, userID, campaignID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		emailIDs := tx.Model(&models.Email{}).Select("id").Where("campaign_id = ?", campaign.ID)
		if err := tx.Where("email_id IN (?)", emailIDs).Delete(&models.EmailVersion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("campaign_id = ?", campaign.ID).Delete(&models.Email{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Investor{}).Where("campaign_id = ?", campaign.ID).
			Update("campaign_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(campaign).Error
	})
}

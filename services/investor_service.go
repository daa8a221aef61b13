package services

import (
	"context"
	"errors"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"reachround/models"
	"reachround/utils"
)

const maxBatchSize = 100

type InvestorInput struct {
	Name        string                `json:"name" validate:"required,max=200"`
	Email       string                `json:"email" validate:"max=320"`
	Firm        string                `json:"firm" validate:"max=200"`
	Title       string                `json:"title" validate:"max=200"`
	LinkedInURL string                `json:"linkedin_url"`
	TwitterURL  string                `json:"twitter_url"`
	WebsiteURL  string                `json:"website_url"`
	CampaignID  *uint                 `json:"campaign_id"`
	Source      models.InvestorSource `json:"source" validate:"omitempty,oneof=manual ai_found"`
	Reasoning   string                `json:"reasoning"`
	MatchScore  *int                  `json:"match_score"`
}

type UpdateInvestorInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Email       *string `json:"email" validate:"omitempty,max=320"`
	Firm        *string `json:"firm" validate:"omitempty,max=200"`
	Title       *string `json:"title" validate:"omitempty,max=200"`
	LinkedInURL *string `json:"linkedin_url"`
	TwitterURL  *string `json:"twitter_url"`
	WebsiteURL  *string `json:"website_url"`
}

// BatchItemResult reports the outcome of one entry of a batch add, by position.
type BatchItemResult struct {
	Index    int              `json:"index"`
	Success  bool             `json:"success"`
	Investor *models.Investor `json:"investor,omitempty"`
	Error    string           `json:"error,omitempty"`
}

type BatchResult struct {
	Created int               `json:"created"`
	Failed  int               `json:"failed"`
	Results []BatchItemResult `json:"results"`
}

type InvestorService struct {
	db     *gorm.DB
	logger *logrus.Entry
}

func NewInvestorService(db *gorm.DB) *InvestorService {
	return &InvestorService{db: db, logger: logrus.WithField("service", "investors")}
}

// Create adds one investor to a project. New investors always start pending.
func (s *InvestorService) Create(ctx context.Context, userID, projectID uint, in InvestorInput) (*models.Investor, error) {
	if _, err := findProject(ctx, s.db, userID, projectID); err != nil {
		return nil, err
	}
	return s.create(ctx, s.db, projectID, in)
}

// BatchCreate inserts each item independently; one bad item never blocks the rest.
func (s *InvestorService) BatchCreate(ctx context.Context, userID, projectID uint, items []InvestorInput) (*BatchResult, error) {
	if _, err := findProject(ctx, s.db, userID, projectID); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, utils.Validation("investors is required")
	}
	if len(items) > maxBatchSize {
		return nil, utils.Validation("at most 100 investors per batch")
	}

	result := &BatchResult{Results: make([]BatchItemResult, 0, len(items))}
	for i, item := range items {
		investor, err := s.create(ctx, s.db, projectID, item)
		if err != nil {
			result.Failed++
			result.Results = append(result.Results, BatchItemResult{Index: i, Error: clientMessage(err)})
			continue
		}
		result.Created++
		result.Results = append(result.Results, BatchItemResult{Index: i, Success: true, Investor: investor})
	}

	s.logger.WithFields(logrus.Fields{
		"project_id": projectID,
		"created":    result.Created,
		"failed":     result.Failed,
	}).Info("batch add finished")
	return result, nil
}

func (s *InvestorService) create(ctx context.Context, db *gorm.DB, projectID uint, in InvestorInput) (*models.Investor, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := utils.ValidateStruct(in); err != nil {
		return nil, validationError(err)
	}
	if in.Email != "" {
		if err := checkmail.ValidateFormat(in.Email); err != nil {
			return nil, utils.Validation("email must be a valid email")
		}
	}
	if err := campaignInProject(ctx, db, projectID, in.CampaignID); err != nil {
		return nil, err
	}
	if in.Source == "" {
		in.Source = models.SourceManual
	}

	investor := models.Investor{
		ProjectID:      projectID,
		CampaignID:     in.CampaignID,
		Name:           in.Name,
		Email:          utils.NilIfEmpty(in.Email),
		Firm:           utils.NilIfEmpty(in.Firm),
		Title:          utils.NilIfEmpty(in.Title),
		LinkedInURL:    utils.NilIfEmpty(in.LinkedInURL),
		TwitterURL:     utils.NilIfEmpty(in.TwitterURL),
		WebsiteURL:     utils.NilIfEmpty(in.WebsiteURL),
		Source:         in.Source,
		Reasoning:      utils.NilIfEmpty(in.Reasoning),
		MatchScore:     in.MatchScore,
		ResearchStatus: models.ResearchPending,
	}
	if err := db.WithContext(ctx).Create(&investor).Error; err != nil {
		return nil, err
	}
	return &investor, nil
}

func (s *InvestorService) ListByProject(ctx context.Context, userID, projectID uint) ([]models.Investor, error) {
	if _, err := findProject(ctx, s.db, userID, projectID); err != nil {
		return nil, err
	}
	return s.list(ctx, "project_id = ?", projectID)
}

func (s *InvestorService) ListByCampaign(ctx context.Context, userID, campaignID uint) ([]models.Investor, error) {
	if _, _, err := findCampaign(ctx, s.db, userID, campaignID); err != nil {
		return nil, err
	}
	return s.list(ctx, "campaign_id = ?", campaignID)
}

func (s *InvestorService) list(ctx context.Context, query string, id uint) ([]models.Investor, error) {
	investors := []models.Investor{}
	err := s.db.WithContext(ctx).Where(query, id).Order("created_at DESC, id DESC").Find(&investors).Error
	return investors, err
}

func (s *InvestorService) Get(ctx context.Context, userID, investorID uint) (*models.Investor, error) {
	investor, _, err := findInvestor(ctx, s.db, userID, investorID)
	return investor, err
}

func (s *InvestorService) Update(ctx context.Context, userID, investorID uint, in UpdateInvestorInput) (*models.Investor, error) {
	investor, _, err := findInvestor(ctx, s.db, userID, investorID)
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
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email != "" {
			if err := checkmail.ValidateFormat(email); err != nil {
				return nil, utils.Validation("email must be a valid email")
			}
		}
		updates["email"] = utils.NilIfEmpty(email)
	}
	optional := map[string]*string{
		"firm":         in.Firm,
		"title":        in.Title,
		"linkedin_url": in.LinkedInURL,
		"twitter_url":  in.TwitterURL,
		"website_url":  in.WebsiteURL,
	}
	for column, value := range optional {
		if value != nil {
			updates[column] = utils.NilIfEmpty(strings.TrimSpace(*value))
		}
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(investor).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	investor, _, err = findInvestor(ctx, s.db, userID, investorID)
	return investor, err
}

// Delete removes the investor together with its emails.
func (s *InvestorService) Delete(ctx context.Context, userID, investorID uint) error {
	investor, _, err := findInvestor(ctx, s.db, userID, investorID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		emailIDs := tx.Model(&models.Email{}).Select("id").Where("investor_id = ?", investor.ID)
		if err := tx.Where("email_id IN (?)", emailIDs).Delete(&models.EmailVersion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("investor_id = ?", investor.ID).Delete(&models.Email{}).Error; err != nil {
			return err
		}
		return tx.Delete(investor).Error
	})
}

// clientMessage is the part of err that is safe to echo back per item.
func clientMessage(err error) string {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Failed to add investor"
}

package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"reachround/models"
	"reachround/utils"
)

// Every lookup below resolves the owning project and compares its user id.
// A missing row is NotFound; someone else's row is Forbidden.

func findProject(ctx context.Context, db *gorm.DB, userID, projectID uint) (*models.Project, error) {
	var project models.Project
	if err := db.WithContext(ctx).First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Project not found")
		}
		return nil, fmt.Errorf("load project %d: %w", projectID, err)
	}
	if project.UserID != userID {
		return nil, utils.Forbidden("Access denied")
	}
	return &project, nil
}

func findCampaign(ctx context.Context, db *gorm.DB, userID, campaignID uint) (*models.Campaign, *models.Project, error) {
	var campaign models.Campaign
	if err := db.WithContext(ctx).First(&campaign, campaignID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, utils.NotFound("Campaign not found")
		}
		return nil, nil, fmt.Errorf("load campaign %d: %w", campaignID, err)
	}
	project, err := findProject(ctx, db, userID, campaign.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return &campaign, project, nil
}

func findInvestor(ctx context.Context, db *gorm.DB, userID, investorID uint) (*models.Investor, *models.Project, error) {
	var investor models.Investor
	if err := db.WithContext(ctx).First(&investor, investorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, utils.NotFound("Investor not found")
		}
		return nil, nil, fmt.Errorf("load investor %d: %w", investorID, err)
	}
	project, err := findProject(ctx, db, userID, investor.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return &investor, project, nil
}

func findEmail(ctx context.Context, db *gorm.DB, userID, emailID uint) (*models.Email, error) {
	var email models.Email
	if err := db.WithContext(ctx).Preload("Investor").First(&email, emailID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Email not found")
		}
		return nil, fmt.Errorf("load email %d: %w", emailID, err)
	}
	if _, err := findProject(ctx, db, userID, email.ProjectID); err != nil {
		return nil, err
	}
	return &email, nil
}

// campaignInProject checks that an optional campaign id belongs to projectID.
func campaignInProject(ctx context.Context, db *gorm.DB, projectID uint, campaignID *uint) error {
	if campaignID == nil {
		return nil
	}
	var count int64
	if err := db.WithContext(ctx).Model(&models.Campaign{}).
		Where("id = ? AND project_id = ?", *campaignID, projectID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return utils.Validation("Campaign does not belong to this project")
	}
	return nil
}

func validationError(err error) error {
	if err == nil {
		return nil
	}
	return utils.Validation(err.Error())
}

func transitionError[S ~string](entity string, from, to S) error {
	te := &models.TransitionError{Entity: entity, From: string(from), To: string(to)}
	return &utils.AppError{Kind: utils.KindValidation, Message: te.Error()}
}

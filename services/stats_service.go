package services

import (
	"context"

	"gorm.io/gorm"

	"reachround/models"
)

type Stats struct {
	Projects         int64 `json:"projects"`
	Investors        int64 `json:"investors"`
	EmailsSent       int64 `json:"emailsSent"`
	AwaitingApproval int64 `json:"awaitingApproval"`
}

type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

// Dashboard counts across every project the user owns.
func (s *StatsService) Dashboard(ctx context.Context, userID uint) (*Stats, error) {
	db := s.db.WithContext(ctx)
	owned := s.db.Model(&models.Project{}).Select("id").Where("user_id = ?", userID)

	var stats Stats
	if err := db.Model(&models.Project{}).Where("user_id = ?", userID).Count(&stats.Projects).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Investor{}).Where("project_id IN (?)", owned).Count(&stats.Investors).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Email{}).
		Where("project_id IN (?) AND status = ?", owned, models.EmailSent).
		Count(&stats.EmailsSent).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Email{}).
		Where("project_id IN (?) AND status = ?", owned, models.EmailDraft).
		Count(&stats.AwaitingApproval).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

package models

import "time"

type CampaignStatus string

const (
	CampaignActive CampaignStatus = "active"
	CampaignPaused CampaignStatus = "paused"
	CampaignClosed CampaignStatus = "closed"
)

// Valid reports whether s is one of the known campaign statuses.
// Campaign status is informational; any valid value may replace any other.
func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignActive, CampaignPaused, CampaignClosed:
		return true
	}
	return false
}

// Campaign is a named funding ask scoped to one project (e.g. "Seed Round - $2M").
type Campaign struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProjectID uint           `gorm:"not null;index" json:"project_id"`
	Name      string         `gorm:"not null" json:"name"`
	Ask       string         `gorm:"not null" json:"ask"`
	Status    CampaignStatus `gorm:"type:varchar(16);default:'active'" json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

package models

import "time"

// Project is a founder's company profile and outreach context.
type Project struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            uint      `gorm:"not null;index" json:"user_id"`
	Name              string    `gorm:"not null" json:"name"`
	OneLiner          string    `gorm:"type:text" json:"one_liner"`
	Industry          *string   `json:"industry"`
	Stage             *string   `json:"stage"`
	TargetGeography   *string   `json:"target_geography"`
	FundingAsk        *string   `json:"funding_ask"`
	AdditionalContext *string   `gorm:"type:text" json:"additional_context"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	Campaigns []Campaign `gorm:"foreignKey:ProjectID" json:"campaigns,omitempty"`
}

func (Project) TableName() string {
	return "projects"
}

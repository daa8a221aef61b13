package models

import "time"

// Email is a generated outreach message to one investor.
type Email struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	ProjectID      uint        `gorm:"not null;index" json:"project_id"`
	CampaignID     *uint       `gorm:"index" json:"campaign_id"`
	InvestorID     uint        `gorm:"not null;index" json:"investor_id"`
	Subject        string      `gorm:"not null" json:"subject"`
	Body           string      `gorm:"type:text;not null" json:"body"`
	Tone           string      `json:"tone"`
	Status         EmailStatus `gorm:"type:varchar(16);default:'draft';index" json:"status"`
	Version        int         `gorm:"default:1" json:"version"`
	Feedback       *string     `gorm:"type:text" json:"feedback"`
	GeneratedAt    time.Time   `json:"generated_at"`
	ApprovedAt     *time.Time  `json:"approved_at"`
	SentAt         *time.Time  `json:"sent_at"`
	GmailMessageID *string     `json:"gmail_message_id"`
	GmailThreadID  *string     `json:"gmail_thread_id"`
	LastError      *string     `gorm:"type:text" json:"last_error"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`

	Investor *Investor `gorm:"foreignKey:InvestorID" json:"investor,omitempty"`
}

func (Email) TableName() string {
	return "emails"
}

// EmailVersion snapshots an email's content before it is regenerated.
type EmailVersion struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EmailID   uint      `gorm:"not null;index" json:"email_id"`
	Version   int       `gorm:"not null" json:"version"`
	Subject   string    `gorm:"not null" json:"subject"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Feedback  *string   `gorm:"type:text" json:"feedback"`
	CreatedAt time.Time `json:"created_at"`
}

func (EmailVersion) TableName() string {
	return "email_versions"
}

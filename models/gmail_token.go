package models

import "time"

// GmailToken stores a user's mailbox OAuth credentials.
// AccessToken and RefreshToken are encrypted in the application layer.
type GmailToken struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	AccessToken  string    `gorm:"type:text;not null" json:"-"`
	RefreshToken string    `gorm:"type:text;not null" json:"-"`
	TokenType    string    `gorm:"default:'Bearer'" json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	Scope        string    `json:"scope"`
	EmailAddress string    `json:"email_address"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (GmailToken) TableName() string {
	return "gmail_tokens"
}

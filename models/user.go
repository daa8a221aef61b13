package models

import (
	"gorm.io/gorm"
)

// User represents a founder account in the system
type User struct {
	gorm.Model

	// Authentication fields
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	TokenVersion int    `gorm:"default:1" json:"-"`

	// Profile information
	Name *string `json:"name,omitempty"`

	// Account status
	IsActive bool `gorm:"default:true" json:"is_active"`

	// Relations
	Projects   []Project   `gorm:"foreignKey:UserID" json:"projects,omitempty"`
	GmailToken *GmailToken `gorm:"foreignKey:UserID" json:"-"`
}

// FounderName is the signature used when drafting outreach on the user's behalf.
func (u *User) FounderName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	if u.Email != "" {
		return u.Email
	}
	return "Founder"
}

// Sanitize removes sensitive information before sending to client
func (u *User) Sanitize() {
	u.PasswordHash = ""
	u.GmailToken = nil
}

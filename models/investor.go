package models

import "time"

type InvestorSource string

const (
	SourceManual  InvestorSource = "manual"
	SourceAIFound InvestorSource = "ai_found"
)

func (s InvestorSource) Valid() bool {
	return s == SourceManual || s == SourceAIFound
}

type RecentInvestment struct {
	Company     string `json:"company"`
	Date        string `json:"date"`
	Stage       string `json:"stage"`
	Description string `json:"description"`
	Relevance   string `json:"relevance,omitempty"`
}

// ActivityType is one of tweet, linkedin, podcast, blog or interview.
type ActivityType string

type RecentActivity struct {
	Type      ActivityType `json:"type"`
	Content   string       `json:"content"`
	Date      string       `json:"date"`
	SourceURL string       `json:"source_url"`
	Relevance string       `json:"relevance,omitempty"`
}

type TalkingPoint struct {
	Hook      string `json:"hook"`
	Reasoning string `json:"reasoning"`
	Source    string `json:"source"`
}

// Research is the structured background and fit analysis for one investor.
// It is stored verbatim on the investor row.
type Research struct {
	Background        string             `gorm:"type:text" json:"background"`
	RecentInvestments []RecentInvestment `gorm:"type:text;serializer:json" json:"recent_investments"`
	InvestmentThesis  string             `gorm:"type:text" json:"investment_thesis"`
	RecentActivity    []RecentActivity   `gorm:"type:text;serializer:json" json:"recent_activity"`
	TalkingPoints     []TalkingPoint     `gorm:"type:text;serializer:json" json:"talking_points"`
	WhyGoodFit        string             `gorm:"type:text" json:"why_good_fit"`
	MatchScore        int                `json:"match_score"`
}

// Investor is an outreach candidate scoped to a project and optionally a campaign.
type Investor struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ProjectID   uint           `gorm:"not null;index" json:"project_id"`
	CampaignID  *uint          `gorm:"index" json:"campaign_id"`
	Name        string         `gorm:"not null" json:"name"`
	Email       *string        `json:"email"`
	Firm        *string        `json:"firm"`
	Title       *string        `json:"title"`
	LinkedInURL *string        `gorm:"column:linkedin_url" json:"linkedin_url"`
	TwitterURL  *string        `json:"twitter_url"`
	WebsiteURL  *string        `json:"website_url"`
	Source      InvestorSource `gorm:"type:varchar(16);default:'manual'" json:"source"`
	Reasoning   *string        `gorm:"type:text" json:"reasoning"`
	MatchScore  *int           `json:"match_score"`

	ResearchStatus      ResearchStatus `gorm:"type:varchar(16);default:'pending';index" json:"research_status"`
	Research            Research       `gorm:"embedded;embeddedPrefix:research_" json:"research"`
	ResearchCompletedAt *time.Time     `json:"research_completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Investor) TableName() string {
	return "investors"
}

// Researched reports whether an email may be drafted for this investor.
func (i *Investor) Researched() bool {
	return i.ResearchStatus == ResearchCompleted
}

package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"reachround/agents"
	"reachround/config"
	"reachround/mailbox"
	"reachround/models"
	"reachround/utils"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, config.MigrateDB(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := models.User{Email: email, PasswordHash: "x", Name: utils.Pointer("Ada Lovelace"), IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedProject(t *testing.T, db *gorm.DB, userID uint) *models.Project {
	t.Helper()
	project := models.Project{
		UserID:          userID,
		Name:            "Acme",
		OneLiner:        "Payroll for robots",
		Industry:        utils.Pointer("Fintech"),
		Stage:           utils.Pointer("Seed"),
		TargetGeography: utils.Pointer("Europe"),
		FundingAsk:      utils.Pointer("$1M pre-seed"),
	}
	require.NoError(t, db.Create(&project).Error)
	return &project
}

func seedInvestor(t *testing.T, db *gorm.DB, projectID uint, status models.ResearchStatus, email string) *models.Investor {
	t.Helper()
	investor := models.Investor{
		ProjectID:      projectID,
		Name:           "Jane Smith",
		Firm:           utils.Pointer("Sequoia"),
		Email:          utils.NilIfEmpty(email),
		Source:         models.SourceManual,
		ResearchStatus: status,
	}
	if status == models.ResearchCompleted {
		investor.Research = sampleResearch()
	}
	require.NoError(t, db.Create(&investor).Error)
	return &investor
}

func seedEmail(t *testing.T, db *gorm.DB, investor *models.Investor, status models.EmailStatus) *models.Email {
	t.Helper()
	email := models.Email{
		ProjectID:  investor.ProjectID,
		CampaignID: investor.CampaignID,
		InvestorID: investor.ID,
		Subject:    "Hello",
		Body:       "Hi Jane",
		Tone:       "warm",
		Status:     status,
		Version:    1,
	}
	require.NoError(t, db.Create(&email).Error)
	return &email
}

func sampleResearch() models.Research {
	return models.Research{
		Background:        "Partner at Sequoia focused on fintech",
		RecentInvestments: []models.RecentInvestment{{Company: "Stripe", Date: "2024-03-15", Stage: "Series C", Description: "Led round"}},
		InvestmentThesis:  "Infrastructure",
		RecentActivity:    []models.RecentActivity{{Type: "podcast", Content: "AI in finance", Date: "2024-12-01"}},
		TalkingPoints:     []models.TalkingPoint{{Hook: "AI podcast", Reasoning: "Shows interest in automation", Source: "Podcast"}},
		WhyGoodFit:        "Backs seed fintech",
		MatchScore:        8,
	}
}

type fakeFinder struct {
	matches []agents.InvestorMatch
	err     error
	got     agents.FindInput
}

func (f *fakeFinder) Find(_ context.Context, in agents.FindInput) ([]agents.InvestorMatch, error) {
	f.got = in
	return f.matches, f.err
}

type fakeResearcher struct {
	research *models.Research
	err      error
	calls    int
}

func (f *fakeResearcher) Research(_ context.Context, _ agents.ResearchInput) (*models.Research, error) {
	f.calls++
	return f.research, f.err
}

type fakeWriter struct {
	draft     *agents.DraftedEmail
	err       error
	gotDraft  agents.DraftInput
	gotRevise agents.ReviseInput
}

func (f *fakeWriter) Draft(_ context.Context, in agents.DraftInput) (*agents.DraftedEmail, error) {
	f.gotDraft = in
	return f.draft, f.err
}

func (f *fakeWriter) Revise(_ context.Context, in agents.ReviseInput) (*agents.DraftedEmail, error) {
	f.gotRevise = in
	return f.draft, f.err
}

type fakeSender struct {
	mu     sync.Mutex
	failTo map[string]error
	sent   []mailbox.Message
}

func (f *fakeSender) Send(_ context.Context, msg mailbox.Message) (*mailbox.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failTo[msg.To]; err != nil {
		return nil, err
	}
	f.sent = append(f.sent, msg)
	return &mailbox.Receipt{MessageID: "msg-" + msg.To, ThreadID: "thread-" + msg.To}, nil
}

type fakeMailboxes struct {
	sender mailbox.Sender
	err    error
}

func (f *fakeMailboxes) SenderFor(_ context.Context, _ uint) (mailbox.Sender, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sender, nil
}

var errSMTP = errors.New("550 mailbox unavailable")

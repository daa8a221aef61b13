package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"reachround/agents"
	"reachround/models"
	"reachround/utils"
)

// EmailAgent drafts and revises outreach emails.
type EmailAgent interface {
	Draft(ctx context.Context, in agents.DraftInput) (*agents.DraftedEmail, error)
	Revise(ctx context.Context, in agents.ReviseInput) (*agents.DraftedEmail, error)
}

type EmailFilter struct {
	Status     *models.EmailStatus
	ProjectID  *uint
	CampaignID *uint
}

type EditEmailInput struct {
	Subject *string `json:"subject" validate:"omitempty,max=500"`
	Body    *string `json:"body"`
}

type EmailService struct {
	db     *gorm.DB
	agent  EmailAgent
	logger *logrus.Entry
}

func NewEmailService(db *gorm.DB, agent EmailAgent) *EmailService {
	return &EmailService{db: db, agent: agent, logger: logrus.WithField("service", "emails")}
}

// Generate drafts a new email for a researched investor.
func (s *EmailService) Generate(ctx context.Context, userID, investorID uint) (*models.Email, error) {
	investor, project, err := findInvestor(ctx, s.db, userID, investorID)
	if err != nil {
		return nil, err
	}
	if !investor.Researched() {
		return nil, utils.Validation("Investor must be researched before generating an email")
	}

	var campaign *models.Campaign
	if investor.CampaignID != nil {
		var c models.Campaign
		if err := s.db.WithContext(ctx).First(&c, *investor.CampaignID).Error; err == nil {
			campaign = &c
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	drafted, err := s.agent.Draft(ctx, draftInput(investor, project, campaign, &user))
	if err != nil {
		s.logger.WithError(err).WithField("investor_id", investorID).Error("email generation failed")
		return nil, utils.Upstream("Failed to generate email", err)
	}

	email := models.Email{
		ProjectID:   project.ID,
		CampaignID:  investor.CampaignID,
		InvestorID:  investor.ID,
		Subject:     strings.TrimSpace(drafted.Subject),
		Body:        strings.TrimSpace(drafted.Body),
		Tone:        drafted.Tone,
		Status:      models.EmailDraft,
		Version:     1,
		GeneratedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&email).Error; err != nil {
		return nil, err
	}
	email.Investor = investor

	s.logger.WithFields(logrus.Fields{"email_id": email.ID, "investor_id": investorID}).Info("email drafted")
	return &email, nil
}

// Regenerate revises a draft with the founder's feedback and keeps the
// previous content as a version.
func (s *EmailService) Regenerate(ctx context.Context, userID, emailID uint, feedback string) (*models.Email, error) {
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return nil, utils.Validation("feedback is required")
	}

	email, err := findEmail(ctx, s.db, userID, emailID)
	if err != nil {
		return nil, err
	}
	if !email.Status.Editable() {
		return nil, utils.Validation("Only draft emails can be regenerated")
	}

	var project models.Project
	if err := s.db.WithContext(ctx).First(&project, email.ProjectID).Error; err != nil {
		return nil, err
	}
	in := agents.ReviseInput{
		Previous:    agents.DraftedEmail{Subject: email.Subject, Body: email.Body, Tone: email.Tone},
		Feedback:    feedback,
		ProjectName: project.Name,
	}
	if email.Investor != nil {
		in.InvestorName = email.Investor.Name
		in.Firm = utils.Deref(email.Investor.Firm)
	}

	revised, err := s.agent.Revise(ctx, in)
	if err != nil {
		s.logger.WithError(err).WithField("email_id", emailID).Error("email revision failed")
		return nil, utils.Upstream("Failed to regenerate email", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		version := models.EmailVersion{
			EmailID:  email.ID,
			Version:  email.Version,
			Subject:  email.Subject,
			Body:     email.Body,
			Feedback: email.Feedback,
		}
		if err := tx.Create(&version).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Email{}).
			Where("id = ? AND status = ?", email.ID, models.EmailDraft).
			Updates(map[string]interface{}{
				"subject":      strings.TrimSpace(revised.Subject),
				"body":         strings.TrimSpace(revised.Body),
				"tone":         revised.Tone,
				"feedback":     feedback,
				"version":      email.Version + 1,
				"generated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.Validation("Only draft emails can be regenerated")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return findEmail(ctx, s.db, userID, emailID)
}

// List returns the approval queue, newest first, across the caller's projects
// unless narrowed by the filter.
func (s *EmailService) List(ctx context.Context, userID uint, filter EmailFilter) ([]models.Email, error) {
	q := s.db.WithContext(ctx).Model(&models.Email{}).Preload("Investor")

	switch {
	case filter.CampaignID != nil:
		if _, _, err := findCampaign(ctx, s.db, userID, *filter.CampaignID); err != nil {
			return nil, err
		}
		q = q.Where("campaign_id = ?", *filter.CampaignID)
		if filter.ProjectID != nil {
			q = q.Where("project_id = ?", *filter.ProjectID)
		}
	case filter.ProjectID != nil:
		if _, err := findProject(ctx, s.db, userID, *filter.ProjectID); err != nil {
			return nil, err
		}
		q = q.Where("project_id = ?", *filter.ProjectID)
	default:
		owned := s.db.Model(&models.Project{}).Select("id").Where("user_id = ?", userID)
		q = q.Where("project_id IN (?)", owned)
	}

	if filter.Status != nil {
		if !filter.Status.Valid() {
			return nil, utils.Validation(fmt.Sprintf("invalid status %q", *filter.Status))
		}
		q = q.Where("status = ?", *filter.Status)
	}

	emails := []models.Email{}
	if err := q.Order("created_at DESC, id DESC").Find(&emails).Error; err != nil {
		return nil, err
	}
	return emails, nil
}

func (s *EmailService) Get(ctx context.Context, userID, emailID uint) (*models.Email, error) {
	return findEmail(ctx, s.db, userID, emailID)
}

// Versions lists earlier content of an email, most recent first.
func (s *EmailService) Versions(ctx context.Context, userID, emailID uint) ([]models.EmailVersion, error) {
	if _, err := findEmail(ctx, s.db, userID, emailID); err != nil {
		return nil, err
	}
	versions := []models.EmailVersion{}
	err := s.db.WithContext(ctx).Where("email_id = ?", emailID).Order("version DESC").Find(&versions).Error
	return versions, err
}

func (s *EmailService) Edit(ctx context.Context, userID, emailID uint, in EditEmailInput) (*models.Email, error) {
	email, err := findEmail(ctx, s.db, userID, emailID)
	if err != nil {
		return nil, err
	}
	if !email.Status.Editable() {
		return nil, utils.Validation("Only draft emails can be edited")
	}
	if err := utils.ValidateStruct(in); err != nil {
		return nil, validationError(err)
	}

	updates := map[string]interface{}{}
	if in.Subject != nil {
		subject := strings.TrimSpace(*in.Subject)
		if subject == "" {
			return nil, utils.Validation("subject cannot be empty")
		}
		updates["subject"] = subject
	}
	if in.Body != nil {
		body := strings.TrimSpace(*in.Body)
		if body == "" {
			return nil, utils.Validation("body cannot be empty")
		}
		updates["body"] = body
	}
	if len(updates) == 0 {
		return nil, utils.Validation("subject or body is required")
	}

	res := s.db.WithContext(ctx).Model(&models.Email{}).
		Where("id = ? AND status = ?", emailID, models.EmailDraft).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, utils.Validation("Only draft emails can be edited")
	}
	return findEmail(ctx, s.db, userID, emailID)
}

// Approve queues a draft for sending. Approving an approved email changes nothing.
func (s *EmailService) Approve(ctx context.Context, userID, emailID uint) (*models.Email, error) {
	email, err := findEmail(ctx, s.db, userID, emailID)
	if err != nil {
		return nil, err
	}

	switch email.Status {
	case models.EmailApproved:
		return email, nil
	case models.EmailDraft:
	default:
		return nil, transitionError("email", email.Status, models.EmailApproved)
	}

	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&models.Email{}).
		Where("id = ? AND status = ?", emailID, models.EmailDraft).
		Updates(map[string]interface{}{"status": models.EmailApproved, "approved_at": now})
	if res.Error != nil {
		return nil, res.Error
	}

	email, err = findEmail(ctx, s.db, userID, emailID)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 && email.Status != models.EmailApproved {
		return nil, transitionError("email", email.Status, models.EmailApproved)
	}

	s.logger.WithFields(logrus.Fields{"user_id": userID, "email_id": emailID}).Info("email approved")
	return email, nil
}

// Reject deletes a draft.
func (s *EmailService) Reject(ctx context.Context, userID, emailID uint) error {
	email, err := findEmail(ctx, s.db, userID, emailID)
	if err != nil {
		return err
	}
	if !email.Status.Editable() {
		return utils.Validation("Only draft emails can be rejected")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND status = ?", emailID, models.EmailDraft).Delete(&models.Email{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.Validation("Only draft emails can be rejected")
		}
		return tx.Where("email_id = ?", emailID).Delete(&models.EmailVersion{}).Error
	})
}

func draftInput(investor *models.Investor, project *models.Project, campaign *models.Campaign, user *models.User) agents.DraftInput {
	ask := "investment"
	switch {
	case campaign != nil && strings.TrimSpace(campaign.Ask) != "":
		ask = campaign.Ask
	case utils.Deref(project.FundingAsk) != "":
		ask = *project.FundingAsk
	}

	r := investor.Research
	in := agents.DraftInput{
		InvestorName:    investor.Name,
		Firm:            utils.Deref(investor.Firm),
		ProjectName:     project.Name,
		ProjectOneLiner: project.OneLiner,
		FounderName:     user.FounderName(),
		Ask:             ask,
		ResearchSummary: r.Background,
		ThesisAlignment: r.WhyGoodFit,
	}
	for _, tp := range r.TalkingPoints {
		in.PersonalizationAngles = append(in.PersonalizationAngles, tp.Hook)
		in.TalkingPoints = append(in.TalkingPoints, tp.Reasoning)
	}
	for _, inv := range r.RecentInvestments {
		in.TalkingPoints = append(in.TalkingPoints, fmt.Sprintf("Invested in %s (%s, %s): %s", inv.Company, inv.Stage, inv.Date, inv.Description))
	}
	return in
}

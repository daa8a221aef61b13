package services

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"reachround/config"
	"reachround/mailbox"
	"reachround/metrics"
	"reachround/models"
	"reachround/utils"
)

type DispatchScope string

const (
	ScopeCampaign DispatchScope = "campaign"
	ScopeProject  DispatchScope = "project"
)

// Mailboxes hands out a sender for a user's connected mailbox.
type Mailboxes interface {
	SenderFor(ctx context.Context, userID uint) (mailbox.Sender, error)
}

type DispatchItem struct {
	ID      uint   `json:"id"`
	Success bool   `json:"success"`
	To      string `json:"to,omitempty"`
	Error   string `json:"error,omitempty"`
}

type DispatchResult struct {
	Sent    int            `json:"sent"`
	Failed  int            `json:"failed"`
	Results []DispatchItem `json:"results"`
}

// AllFailed reports whether nothing in a non-empty run was delivered.
func (r *DispatchResult) AllFailed() bool {
	return len(r.Results) > 0 && r.Sent == 0
}

// ProgressFunc is called once per email as soon as its outcome is known.
type ProgressFunc func(DispatchItem)

type DispatchService struct {
	db        *gorm.DB
	mailboxes Mailboxes
	minDelay  time.Duration
	maxDelay  time.Duration
	logger    *logrus.Entry

	sleep  func(ctx context.Context, d time.Duration) error
	jitter func(n int64) int64
}

const markSentAttempts = 2

func NewDispatchService(db *gorm.DB, mailboxes Mailboxes, cfg config.DispatchConfig) *DispatchService {
	return &DispatchService{
		db:        db,
		mailboxes: mailboxes,
		minDelay:  cfg.MinDelay,
		maxDelay:  cfg.MaxDelay,
		logger:    logrus.WithField("service", "dispatch"),
		sleep:     sleepContext,
		jitter:    rand.Int64N,
	}
}

// SendApproved sends every approved email in the scope, one at a time,
// pausing a random interval between sends.
func (s *DispatchService) SendApproved(ctx context.Context, userID uint, scope DispatchScope, scopeID uint, progress ProgressFunc) (*DispatchResult, error) {
	column, err := s.authorizeScope(ctx, userID, scope, scopeID)
	if err != nil {
		return nil, err
	}

	var emails []models.Email
	if err := s.db.WithContext(ctx).
		Preload("Investor").
		Where(column+" = ? AND status = ?", scopeID, models.EmailApproved).
		Order("created_at ASC, id ASC").
		Find(&emails).Error; err != nil {
		return nil, err
	}
	if len(emails) == 0 {
		return nil, utils.Validation("No approved emails to send")
	}

	sender, err := s.mailboxes.SenderFor(ctx, userID)
	if errors.Is(err, mailbox.ErrNotConnected) {
		return nil, utils.Validation("Gmail not connected")
	}
	if err != nil {
		return nil, utils.Upstream("Failed to open Gmail mailbox", err)
	}

	log := s.logger.WithFields(logrus.Fields{"user_id": userID, "scope": scope, "scope_id": scopeID})
	log.WithField("count", len(emails)).Info("dispatch started")

	result := &DispatchResult{Results: make([]DispatchItem, 0, len(emails))}
	for i := range emails {
		if i > 0 {
			if err := s.sleep(ctx, s.delay()); err != nil {
				log.WithField("remaining", len(emails)-i).Warn("dispatch interrupted")
				return result, err
			}
		}

		item := s.sendOne(ctx, sender, &emails[i])
		if item.Success {
			result.Sent++
			metrics.EmailsDispatched.WithLabelValues("sent").Inc()
		} else {
			result.Failed++
			metrics.EmailsDispatched.WithLabelValues("failed").Inc()
		}
		result.Results = append(result.Results, item)
		if progress != nil {
			progress(item)
		}
	}

	log.WithFields(logrus.Fields{"sent": result.Sent, "failed": result.Failed}).Info("dispatch finished")
	return result, nil
}

func (s *DispatchService) authorizeScope(ctx context.Context, userID uint, scope DispatchScope, scopeID uint) (string, error) {
	switch scope {
	case ScopeCampaign:
		if _, _, err := findCampaign(ctx, s.db, userID, scopeID); err != nil {
			return "", err
		}
		return "campaign_id", nil
	case ScopeProject:
		if _, err := findProject(ctx, s.db, userID, scopeID); err != nil {
			return "", err
		}
		return "project_id", nil
	}
	return "", utils.Validation("scope must be campaign or project")
}

func (s *DispatchService) sendOne(ctx context.Context, sender mailbox.Sender, email *models.Email) DispatchItem {
	item := DispatchItem{ID: email.ID}

	claim := s.db.WithContext(ctx).Model(&models.Email{}).
		Where("id = ? AND status = ?", email.ID, models.EmailApproved).
		Update("status", models.EmailSending)
	if claim.Error != nil || claim.RowsAffected == 0 {
		item.Error = "Email is no longer approved"
		return item
	}

	// Bookkeeping after the claim must land even if the caller goes away.
	persist := context.WithoutCancel(ctx)

	to := ""
	if email.Investor != nil {
		to = utils.Deref(email.Investor.Email)
	}
	if to == "" {
		item.Error = "Investor has no email address"
		s.revert(persist, email.ID, item.Error)
		return item
	}
	item.To = to

	receipt, err := sender.Send(ctx, mailbox.Message{To: to, Subject: email.Subject, Body: email.Body})
	if err != nil {
		item.Error = err.Error()
		s.revert(persist, email.ID, item.Error)
		utils.LogError("dispatch_send", err, map[string]interface{}{"email_id": email.ID})
		return item
	}

	if err := s.markSent(persist, email.ID, receipt); err != nil {
		utils.LogError("dispatch_mark_sent", err, map[string]interface{}{"email_id": email.ID, "gmail_message_id": receipt.MessageID})
	}

	item.Success = true
	return item
}

// markSent records delivery. The message is already out, so a failed write
// is retried before giving up.
func (s *DispatchService) markSent(ctx context.Context, emailID uint, receipt *mailbox.Receipt) error {
	updates := map[string]interface{}{
		"status":           models.EmailSent,
		"sent_at":          time.Now().UTC(),
		"gmail_message_id": receipt.MessageID,
		"gmail_thread_id":  receipt.ThreadID,
		"last_error":       nil,
	}

	var err error
	for attempt := 1; attempt <= markSentAttempts; attempt++ {
		err = s.db.WithContext(ctx).Model(&models.Email{}).
			Where("id = ? AND status = ?", emailID, models.EmailSending).
			Updates(updates).Error
		if err == nil {
			return nil
		}
		s.logger.WithError(err).WithFields(logrus.Fields{"email_id": emailID, "attempt": attempt}).Warn("failed to record sent email")
	}
	return err
}

// revert puts a claimed email back to draft so the founder can fix and re-approve it.
func (s *DispatchService) revert(ctx context.Context, emailID uint, reason string) {
	err := s.db.WithContext(ctx).Model(&models.Email{}).
		Where("id = ? AND status = ?", emailID, models.EmailSending).
		Updates(map[string]interface{}{"status": models.EmailDraft, "last_error": reason}).Error
	if err != nil {
		utils.LogError("dispatch_revert", err, map[string]interface{}{"email_id": emailID})
	}
}

func (s *DispatchService) delay() time.Duration {
	if s.maxDelay <= s.minDelay {
		return s.minDelay
	}
	return s.minDelay + time.Duration(s.jitter(int64(s.maxDelay-s.minDelay)+1))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

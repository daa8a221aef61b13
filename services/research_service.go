package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"reachround/agents"
	"reachround/models"
	"reachround/utils"
)

// ResearchAgent produces structured research for one investor.
type ResearchAgent interface {
	Research(ctx context.Context, in agents.ResearchInput) (*models.Research, error)
}

type ResearchService struct {
	db     *gorm.DB
	agent  ResearchAgent
	logger *logrus.Entry
}

func NewResearchService(db *gorm.DB, agent ResearchAgent) *ResearchService {
	return &ResearchService{db: db, agent: agent, logger: logrus.WithField("service", "research")}
}

// Research runs one research pass and stores the result on the investor.
// The investor is locked in researching for the duration of the call; a
// second request for the same investor is rejected until it settles.
func (s *ResearchService) Research(ctx context.Context, userID, investorID uint) (*models.Investor, error) {
	investor, project, err := findInvestor(ctx, s.db, userID, investorID)
	if err != nil {
		return nil, err
	}

	if err := s.begin(ctx, investor); err != nil {
		return nil, err
	}

	log := s.logger.WithFields(logrus.Fields{"user_id": userID, "investor_id": investorID})
	research, err := s.agent.Research(ctx, agents.ResearchInput{
		InvestorName: investor.Name,
		Firm:         utils.Deref(investor.Firm),
		Project:      projectFacts(project),
	})
	if err == nil && research == nil {
		err = agents.ErrMalformedResponse
	}
	if err != nil {
		log.WithError(err).Error("research failed")
		s.markFailed(investorID)
		return nil, utils.Upstream("Failed to research investor", err)
	}

	if err := s.complete(ctx, investorID, research); err != nil {
		if utils.KindOf(err) != utils.KindValidation {
			log.WithError(err).Error("failed to store research")
			s.markFailed(investorID)
		}
		return nil, err
	}

	log.WithField("match_score", research.MatchScore).Info("research stored")
	stored, _, err := findInvestor(ctx, s.db, userID, investorID)
	return stored, err
}

// complete writes only the research columns, and only while this request
// still holds the researching lock.
func (s *ResearchService) complete(ctx context.Context, investorID uint, research *models.Research) error {
	now := time.Now().UTC()
	res := s.db.WithContext(context.WithoutCancel(ctx)).Model(&models.Investor{}).
		Where("id = ? AND research_status = ?", investorID, models.ResearchResearching).
		Select(researchColumns).
		Updates(&models.Investor{
			ResearchStatus:      models.ResearchCompleted,
			Research:            *research,
			ResearchCompletedAt: &now,
			UpdatedAt:           now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.Validation("Research was released before it finished, please retry")
	}
	return nil
}

var researchColumns = []string{
	"research_status",
	"research_background",
	"research_recent_investments",
	"research_investment_thesis",
	"research_recent_activity",
	"research_talking_points",
	"research_why_good_fit",
	"research_match_score",
	"research_completed_at",
	"updated_at",
}

// begin moves the investor to researching in a single conditional update.
func (s *ResearchService) begin(ctx context.Context, investor *models.Investor) error {
	if investor.ResearchStatus == models.ResearchResearching {
		return utils.Validation("Research is already in progress for this investor")
	}
	if !investor.ResearchStatus.CanTransitionTo(models.ResearchResearching) {
		return transitionError("investor research", investor.ResearchStatus, models.ResearchResearching)
	}

	res := s.db.WithContext(ctx).Model(&models.Investor{}).
		Where("id = ? AND research_status IN ?", investor.ID, models.ResearchSourcesOf(models.ResearchResearching)).
		Update("research_status", models.ResearchResearching)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.Validation("Research is already in progress for this investor")
	}
	investor.ResearchStatus = models.ResearchResearching
	return nil
}

// markFailed runs on its own context so a cancelled request still releases the lock.
// Research fields are left as they were.
func (s *ResearchService) markFailed(investorID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.db.WithContext(ctx).Model(&models.Investor{}).
		Where("id = ? AND research_status = ?", investorID, models.ResearchResearching).
		Update("research_status", models.ResearchFailed).Error
	if err != nil {
		utils.LogError("research_mark_failed", err, map[string]interface{}{"investor_id": investorID})
	}
}

// FailStale fails every investor that has been researching for longer than
// olderThan and returns how many were released.
func (s *ResearchService) FailStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res := s.db.WithContext(ctx).Model(&models.Investor{}).
		Where("research_status = ? AND updated_at < ?", models.ResearchResearching, cutoff).
		Update("research_status", models.ResearchFailed)
	return res.RowsAffected, res.Error
}

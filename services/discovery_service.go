package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"reachround/agents"
	"reachround/models"
	"reachround/utils"
)

const defaultFindCount = 5

type FindInvestorsInput struct {
	Criteria  string `json:"criteria" validate:"max=2000"`
	Geography string `json:"geography" validate:"max=200"`
	Count     int    `json:"count" validate:"omitempty,min=1,max=20"`
}

// Finder proposes investors for a project.
type Finder interface {
	Find(ctx context.Context, in agents.FindInput) ([]agents.InvestorMatch, error)
}

type DiscoveryService struct {
	db     *gorm.DB
	finder Finder
	logger *logrus.Entry
}

func NewDiscoveryService(db *gorm.DB, finder Finder) *DiscoveryService {
	return &DiscoveryService{db: db, finder: finder, logger: logrus.WithField("service", "discovery")}
}

// Find returns candidate investors. Nothing is stored until the founder
// adds the ones they want through a batch add.
func (s *DiscoveryService) Find(ctx context.Context, userID, projectID uint, in FindInvestorsInput) ([]agents.InvestorMatch, error) {
	project, err := findProject(ctx, s.db, userID, projectID)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(in); err != nil {
		return nil, validationError(err)
	}
	if in.Count == 0 {
		in.Count = defaultFindCount
	}

	geography := strings.TrimSpace(in.Geography)
	if geography == "" {
		geography = utils.Deref(project.TargetGeography)
	}

	matches, err := s.finder.Find(ctx, agents.FindInput{
		Project:   projectFacts(project),
		Geography: geography,
		Criteria:  strings.TrimSpace(in.Criteria),
		Count:     in.Count,
	})
	if err != nil {
		s.logger.WithError(err).WithField("project_id", projectID).Error("investor discovery failed")
		return nil, utils.Upstream("Failed to find investors", err)
	}
	if matches == nil {
		matches = []agents.InvestorMatch{}
	}
	return matches, nil
}

func projectFacts(p *models.Project) agents.ProjectFacts {
	return agents.ProjectFacts{
		Name:     p.Name,
		OneLiner: p.OneLiner,
		Industry: utils.Deref(p.Industry),
		Stage:    utils.Deref(p.Stage),
	}
}

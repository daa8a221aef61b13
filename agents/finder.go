package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"reachround/agents/llm"
	"reachround/metrics"
)

// ProjectFacts is the startup context every prompt is built from.
type ProjectFacts struct {
	Name     string
	OneLiner string
	Industry string
	Stage    string
}

type FindInput struct {
	Project   ProjectFacts
	Geography string
	Criteria  string
	Count     int
}

// InvestorMatch is one candidate proposed by the model. Nothing here is verified.
type InvestorMatch struct {
	Name        string `json:"name"`
	Firm        string `json:"firm"`
	Title       string `json:"title"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
	TwitterURL  string `json:"twitter_url,omitempty"`
	Reasoning   string `json:"reasoning"`
	MatchScore  int    `json:"match_score"`
}

type InvestorFinder struct {
	llm    llm.Client
	logger *logrus.Entry
}

func NewInvestorFinder(client llm.Client, logger *logrus.Entry) *InvestorFinder {
	if logger == nil {
		logger = logrus.WithField("component", "investor_finder")
	}
	return &InvestorFinder{llm: client, logger: logger}
}

// Find asks the model for up to in.Count investors and returns at most that many.
func (f *InvestorFinder) Find(ctx context.Context, in FindInput) (matches []InvestorMatch, err error) {
	defer func() { metrics.LLMRequests.WithLabelValues("finder", metrics.Outcome(err)).Inc() }()

	reply, err := f.llm.Complete(ctx, fmt.Sprintf(finderSystemPrompt, in.Count), buildFinderPrompt(in))
	if err != nil {
		return nil, err
	}

	if err := decodeReply(reply, &matches); err != nil {
		f.logger.WithError(err).WithField("reply_len", len(reply)).Warn("unparseable investor list")
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if len(matches) > in.Count {
		matches = matches[:in.Count]
	}
	return matches, nil
}

func buildFinderPrompt(in FindInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Find %d investors for this startup:\n\n", in.Count)
	fmt.Fprintf(&b, "**Company:** %s\n", in.Project.Name)
	fmt.Fprintf(&b, "**Description:** %s\n", in.Project.OneLiner)
	writeOptional(&b, "**Industry:** %s\n", in.Project.Industry)
	writeOptional(&b, "**Stage:** %s\n", in.Project.Stage)
	writeOptional(&b, "**Target Geography:** %s\n", in.Geography)
	writeOptional(&b, "**Additional Criteria:** %s\n", in.Criteria)
	fmt.Fprintf(&b, "\nPlease identify %d investors who would be most likely to invest in this company. "+
		"Focus on recent activity and investors who are actively investing.\n\n", in.Count)
	b.WriteString("Return ONLY the JSON array, no additional text.")
	return b.String()
}

func writeOptional(b *strings.Builder, format, value string) {
	if value != "" {
		fmt.Fprintf(b, format, value)
	}
}

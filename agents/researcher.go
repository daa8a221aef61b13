package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"reachround/agents/llm"
	"reachround/metrics"
	"reachround/models"
)

var ErrMalformedResponse = errors.New("malformed model response")

type ResearchInput struct {
	InvestorName string
	Firm         string
	Project      ProjectFacts
}

type Researcher struct {
	llm    llm.Client
	logger *logrus.Entry
}

func NewResearcher(client llm.Client, logger *logrus.Entry) *Researcher {
	if logger == nil {
		logger = logrus.WithField("component", "researcher")
	}
	return &Researcher{llm: client, logger: logger}
}

// Research returns the model's structured research exactly as produced.
func (r *Researcher) Research(ctx context.Context, in ResearchInput) (research *models.Research, err error) {
	defer func() { metrics.LLMRequests.WithLabelValues("researcher", metrics.Outcome(err)).Inc() }()

	reply, err := r.llm.Complete(ctx, researchSystemPrompt, buildResearchPrompt(in))
	if err != nil {
		return nil, err
	}

	var out models.Research
	if err := decodeReply(reply, &out); err != nil {
		r.logger.WithError(err).WithField("investor", in.InvestorName).Warn("unparseable research")
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if !usableResearch(&out) {
		r.logger.WithField("investor", in.InvestorName).Warn("research reply has no content")
		return nil, fmt.Errorf("%w: research has no background", ErrMalformedResponse)
	}

	r.logger.WithFields(logrus.Fields{
		"investor":       in.InvestorName,
		"talking_points": len(out.TalkingPoints),
	}).Info("research complete")

	return &out, nil
}

// usableResearch rejects replies such as null or {} that decode cleanly but
// carry nothing an email could be written from.
func usableResearch(r *models.Research) bool {
	return strings.TrimSpace(r.Background) != ""
}

func buildResearchPrompt(in ResearchInput) string {
	var b strings.Builder
	b.WriteString("Research this investor for a personalized cold email:\n\n")
	fmt.Fprintf(&b, "**Investor:** %s\n", in.InvestorName)
	writeOptional(&b, "**Firm:** %s\n", in.Firm)
	b.WriteString("\n**The startup reaching out:**\n")
	fmt.Fprintf(&b, "- Company: %s\n", in.Project.Name)
	fmt.Fprintf(&b, "- Description: %s\n", in.Project.OneLiner)
	writeOptional(&b, "- Industry: %s\n", in.Project.Industry)
	writeOptional(&b, "- Stage: %s\n", in.Project.Stage)
	fmt.Fprintf(&b, "\nExplain why they are a good fit for %s. ", in.Project.Name)
	b.WriteString("Focus on specific, recent information that can be referenced in a cold email.\n\n")
	b.WriteString("Return ONLY the JSON object, no additional text.")
	return b.String()
}

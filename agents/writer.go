package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"reachround/agents/llm"
	"reachround/metrics"
)

type DraftInput struct {
	InvestorName          string
	Firm                  string
	ProjectName           string
	ProjectOneLiner       string
	FounderName           string
	Ask                   string
	ResearchSummary       string
	ThesisAlignment       string
	PersonalizationAngles []string
	TalkingPoints         []string
}

type ReviseInput struct {
	Previous     DraftedEmail
	Feedback     string
	ProjectName  string
	InvestorName string
	Firm         string
}

type DraftedEmail struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Tone    string `json:"tone"`
}

type EmailWriter struct {
	llm    llm.Client
	logger *logrus.Entry
}

func NewEmailWriter(client llm.Client, logger *logrus.Entry) *EmailWriter {
	if logger == nil {
		logger = logrus.WithField("component", "email_writer")
	}
	return &EmailWriter{llm: client, logger: logger}
}

// Draft writes a first outreach email from the investor research.
func (w *EmailWriter) Draft(ctx context.Context, in DraftInput) (email *DraftedEmail, err error) {
	defer func() { metrics.LLMRequests.WithLabelValues("writer", metrics.Outcome(err)).Inc() }()
	return w.complete(ctx, writerSystemPrompt, buildDraftPrompt(in))
}

// Revise rewrites a previous draft following the founder's feedback.
func (w *EmailWriter) Revise(ctx context.Context, in ReviseInput) (email *DraftedEmail, err error) {
	defer func() { metrics.LLMRequests.WithLabelValues("reviser", metrics.Outcome(err)).Inc() }()
	return w.complete(ctx, reviseSystemPrompt, buildRevisePrompt(in))
}

func (w *EmailWriter) complete(ctx context.Context, system, user string) (*DraftedEmail, error) {
	reply, err := w.llm.Complete(ctx, system, user)
	if err != nil {
		return nil, err
	}

	var out DraftedEmail
	if err := decodeReply(reply, &out); err != nil {
		w.logger.WithError(err).Warn("unparseable email draft")
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if strings.TrimSpace(out.Subject) == "" || strings.TrimSpace(out.Body) == "" {
		return nil, fmt.Errorf("%w: subject and body are required", ErrMalformedResponse)
	}
	return &out, nil
}

func buildDraftPrompt(in DraftInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a fundraising cold email to %s", in.InvestorName)
	if in.Firm != "" {
		fmt.Fprintf(&b, " at %s", in.Firm)
	}
	b.WriteString(".\n\n")
	fmt.Fprintf(&b, "**From:** %s\n\n", in.FounderName)
	fmt.Fprintf(&b, "**What I'm building:** %s\n%s\n\n", in.ProjectName, in.ProjectOneLiner)
	fmt.Fprintf(&b, "**Fundraising context:**\n%s\n", in.Ask)

	if in.ResearchSummary != "" {
		fmt.Fprintf(&b, "\n**About %s:**\n%s\n", in.InvestorName, in.ResearchSummary)
	}
	if in.ThesisAlignment != "" {
		fmt.Fprintf(&b, "\n**Why They're Relevant:**\n%s\n", in.ThesisAlignment)
	}
	if len(in.PersonalizationAngles) > 0 {
		b.WriteString("\n**Personal Hooks (use ONE of these to open):**\n")
		writeBullets(&b, in.PersonalizationAngles)
	}
	if len(in.TalkingPoints) > 0 {
		b.WriteString("\n**Key Points to Potentially Include:**\n")
		writeBullets(&b, in.TalkingPoints)
	}

	fmt.Fprintf(&b, "\nUse the most specific detail about %s as the hook, ", in.InvestorName)
	b.WriteString("combine the company intro with one metric, connect their work to the round, ")
	b.WriteString("and close with a concrete ask and timeframe. Target 75-100 words.\n\n")
	b.WriteString("Return ONLY the JSON object. No additional text.")
	return b.String()
}

func buildRevisePrompt(in ReviseInput) string {
	var b strings.Builder
	b.WriteString("The founder wants to revise this email:\n\n")
	fmt.Fprintf(&b, "**Previous Email:**\nSubject: %s\nBody: %s\n\n", in.Previous.Subject, in.Previous.Body)
	fmt.Fprintf(&b, "**Founder's Feedback:**\n%s\n\n", in.Feedback)
	fmt.Fprintf(&b, "**Context:**\nCompany: %s\nInvestor: %s", in.ProjectName, in.InvestorName)
	if in.Firm != "" {
		fmt.Fprintf(&b, " at %s", in.Firm)
	}
	b.WriteString("\n\nRevise the email based on the feedback.\n\n")
	b.WriteString("Return ONLY the JSON object with the new subject, body and tone.")
	return b.String()
}

func writeBullets(b *strings.Builder, items []string) {
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			fmt.Fprintf(b, "- %s\n", item)
		}
	}
}

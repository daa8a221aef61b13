package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	reply  string
	err    error
	system string
	user   string
}

func (f *fakeLLM) Complete(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.system, f.user = systemPrompt, userPrompt
	return f.reply, f.err
}

var acme = ProjectFacts{Name: "Acme", OneLiner: "Payroll for robots", Industry: "Fintech", Stage: "Seed"}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `[{"a":1}]`, StripCodeFence("```json\n[{\"a\":1}]\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence("  {\"a\":1}  "))
}

func TestInvestorFinder_Find(t *testing.T) {
	t.Run("Success - Truncates to requested count", func(t *testing.T) {
		fake := &fakeLLM{reply: "```json\n[" +
			`{"name":"Jane Smith","firm":"Sequoia","title":"Partner","reasoning":"fintech","match_score":9},` +
			`{"name":"John Roe","firm":"Accel","title":"Principal","reasoning":"seed","match_score":7},` +
			`{"name":"Extra","firm":"X","title":"Y","reasoning":"z","match_score":11}` +
			"]\n```"}
		finder := NewInvestorFinder(fake, nil)

		matches, err := finder.Find(context.Background(), FindInput{Project: acme, Geography: "Europe", Count: 2})
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, "Jane Smith", matches[0].Name)
		assert.Equal(t, 9, matches[0].MatchScore)

		assert.Contains(t, fake.system, "identify 2 potential investors")
		assert.Contains(t, fake.user, "**Target Geography:** Europe")
		assert.NotContains(t, fake.user, "Additional Criteria")
	})

	t.Run("Success - Fewer than requested is fine", func(t *testing.T) {
		finder := NewInvestorFinder(&fakeLLM{reply: `[{"name":"Solo","firm":"F","title":"GP","reasoning":"r","match_score":5}]`}, nil)

		matches, err := finder.Find(context.Background(), FindInput{Project: acme, Count: 5})
		require.NoError(t, err)
		assert.Len(t, matches, 1)
	})

	t.Run("Error - Unparseable reply", func(t *testing.T) {
		finder := NewInvestorFinder(&fakeLLM{reply: "Sure! Here are some investors"}, nil)

		_, err := finder.Find(context.Background(), FindInput{Project: acme, Count: 5})
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("Error - Provider failure", func(t *testing.T) {
		boom := errors.New("timeout")
		finder := NewInvestorFinder(&fakeLLM{err: boom}, nil)

		_, err := finder.Find(context.Background(), FindInput{Project: acme, Count: 5})
		assert.ErrorIs(t, err, boom)
	})
}

func TestResearcher_Research(t *testing.T) {
	t.Run("Success - Parses structured research", func(t *testing.T) {
		fake := &fakeLLM{reply: `{
			"background": "Partner at Sequoia",
			"recent_investments": [{"company": "Stripe", "date": "2024-03-15", "stage": "Series C", "description": "Led round"}],
			"investment_thesis": "Infra",
			"recent_activity": [{"type": "podcast", "content": "On AI", "date": "2024-12-01", "source_url": "https://example.com"}],
			"talking_points": [{"hook": "AI podcast", "reasoning": "shows interest", "source": "Podcast"}],
			"why_good_fit": "Backs fintech",
			"match_score": 8
		}`}
		r := NewResearcher(fake, nil)

		research, err := r.Research(context.Background(), ResearchInput{InvestorName: "Jane Smith", Firm: "Sequoia", Project: acme})
		require.NoError(t, err)
		assert.Equal(t, "Partner at Sequoia", research.Background)
		require.Len(t, research.RecentInvestments, 1)
		assert.Equal(t, "Stripe", research.RecentInvestments[0].Company)
		assert.Equal(t, "podcast", string(research.RecentActivity[0].Type))
		assert.Equal(t, 8, research.MatchScore)

		assert.Contains(t, fake.user, "**Firm:** Sequoia")
		assert.Contains(t, fake.user, "- Industry: Fintech")
	})

	t.Run("Error - Not JSON", func(t *testing.T) {
		r := NewResearcher(&fakeLLM{reply: "I could not find anything."}, nil)

		_, err := r.Research(context.Background(), ResearchInput{InvestorName: "Jane", Project: acme})
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("Error - Empty reply fails research", func(t *testing.T) {
		for _, reply := range []string{"null", "{}", "```json\n{\"background\": \"  \", \"match_score\": 7}\n```"} {
			r := NewResearcher(&fakeLLM{reply: reply}, nil)

			research, err := r.Research(context.Background(), ResearchInput{InvestorName: "Jane", Project: acme})
			assert.ErrorIs(t, err, ErrMalformedResponse, reply)
			assert.Nil(t, research)
		}
	})
}

func TestEmailWriter_Draft(t *testing.T) {
	t.Run("Success - Subject, body and tone", func(t *testing.T) {
		fake := &fakeLLM{reply: "```json\n{\"subject\":\"Your Stripe bet\",\"body\":\"Hi Jane, ...\",\"tone\":\"warm\"}\n```"}
		w := NewEmailWriter(fake, nil)

		email, err := w.Draft(context.Background(), DraftInput{
			InvestorName:          "Jane Smith",
			Firm:                  "Sequoia",
			ProjectName:           "Acme",
			ProjectOneLiner:       "Payroll for robots",
			FounderName:           "Ada",
			Ask:                   "$500k",
			ResearchSummary:       "Partner at Sequoia",
			PersonalizationAngles: []string{"AI podcast", " "},
		})
		require.NoError(t, err)
		assert.Equal(t, "Your Stripe bet", email.Subject)
		assert.Equal(t, "warm", email.Tone)

		assert.Contains(t, fake.user, "to Jane Smith at Sequoia")
		assert.Contains(t, fake.user, "**From:** Ada")
		assert.Contains(t, fake.user, "- AI podcast\n")
		assert.NotContains(t, fake.user, "Key Points")
	})

	t.Run("Error - Empty body is malformed", func(t *testing.T) {
		w := NewEmailWriter(&fakeLLM{reply: `{"subject":"Hi","body":"  "}`}, nil)

		_, err := w.Draft(context.Background(), DraftInput{InvestorName: "Jane"})
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("Error - Missing subject is malformed", func(t *testing.T) {
		w := NewEmailWriter(&fakeLLM{reply: `{"body":"Hello"}`}, nil)

		_, err := w.Draft(context.Background(), DraftInput{InvestorName: "Jane"})
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})
}

func TestEmailWriter_Revise(t *testing.T) {
	fake := &fakeLLM{reply: `{"subject":"Shorter","body":"Hi Jane, shorter.","tone":"direct"}`}
	w := NewEmailWriter(fake, nil)

	email, err := w.Revise(context.Background(), ReviseInput{
		Previous:     DraftedEmail{Subject: "Long", Body: "Very long body"},
		Feedback:     "make it shorter",
		ProjectName:  "Acme",
		InvestorName: "Jane Smith",
	})
	require.NoError(t, err)
	assert.Equal(t, "Shorter", email.Subject)
	assert.Contains(t, fake.user, "make it shorter")
	assert.Contains(t, fake.user, "Subject: Long")
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResearchStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to ResearchStatus
		allowed  bool
	}{
		{ResearchPending, ResearchResearching, true},
		{ResearchResearching, ResearchCompleted, true},
		{ResearchResearching, ResearchFailed, true},
		{ResearchFailed, ResearchResearching, true},
		{ResearchCompleted, ResearchResearching, true},
		{ResearchPending, ResearchCompleted, false},
		{ResearchPending, ResearchFailed, false},
		{ResearchResearching, ResearchResearching, false},
		{ResearchFailed, ResearchCompleted, false},
		{ResearchCompleted, ResearchPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestResearchSourcesOf(t *testing.T) {
	assert.ElementsMatch(t,
		[]ResearchStatus{ResearchPending, ResearchFailed, ResearchCompleted},
		ResearchSourcesOf(ResearchResearching))
	assert.ElementsMatch(t, []ResearchStatus{ResearchResearching}, ResearchSourcesOf(ResearchFailed))
	assert.Empty(t, ResearchSourcesOf(ResearchPending))
}

func TestEmailStatus_Transitions(t *testing.T) {
	assert.True(t, EmailDraft.CanTransitionTo(EmailApproved))
	assert.True(t, EmailDraft.CanTransitionTo(EmailDraft))
	assert.True(t, EmailApproved.CanTransitionTo(EmailApproved))
	assert.True(t, EmailApproved.CanTransitionTo(EmailSending))
	assert.True(t, EmailSending.CanTransitionTo(EmailSent))
	assert.True(t, EmailSending.CanTransitionTo(EmailDraft))

	assert.False(t, EmailDraft.CanTransitionTo(EmailSent))
	assert.False(t, EmailApproved.CanTransitionTo(EmailDraft))
	assert.False(t, EmailSent.CanTransitionTo(EmailDraft))
	assert.False(t, EmailSent.CanTransitionTo(EmailApproved))
	assert.False(t, EmailDraft.CanTransitionTo(EmailFailed))
	assert.False(t, EmailSending.CanTransitionTo(EmailFailed))
}

func TestEmailStatus_Editable(t *testing.T) {
	assert.True(t, EmailDraft.Editable())
	for _, s := range []EmailStatus{EmailApproved, EmailSending, EmailSent, EmailFailed} {
		assert.False(t, s.Editable(), s)
	}
}

func TestEmailSourcesOf(t *testing.T) {
	assert.ElementsMatch(t, []EmailStatus{EmailDraft, EmailApproved}, EmailSourcesOf(EmailApproved))
	assert.ElementsMatch(t, []EmailStatus{EmailApproved}, EmailSourcesOf(EmailSending))
	assert.ElementsMatch(t, []EmailStatus{EmailSending}, EmailSourcesOf(EmailSent))
}

func TestUser_FounderName(t *testing.T) {
	name := "Ada Lovelace"
	empty := ""

	assert.Equal(t, "Ada Lovelace", (&User{Name: &name, Email: "ada@example.com"}).FounderName())
	assert.Equal(t, "ada@example.com", (&User{Name: &empty, Email: "ada@example.com"}).FounderName())
	assert.Equal(t, "Founder", (&User{}).FounderName())
}

func TestCampaignStatus_Valid(t *testing.T) {
	assert.True(t, CampaignActive.Valid())
	assert.True(t, CampaignPaused.Valid())
	assert.True(t, CampaignClosed.Valid())
	assert.False(t, CampaignStatus("archived").Valid())
}

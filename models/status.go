package models

import "fmt"

// ResearchStatus tracks an investor's research lifecycle.
type ResearchStatus string

const (
	ResearchPending     ResearchStatus = "pending"
	ResearchResearching ResearchStatus = "researching"
	ResearchCompleted   ResearchStatus = "completed"
	ResearchFailed      ResearchStatus = "failed"
)

var researchTransitions = map[ResearchStatus][]ResearchStatus{
	ResearchPending:     {ResearchResearching},
	ResearchResearching: {ResearchCompleted, ResearchFailed},
	ResearchCompleted:   {ResearchResearching},
	ResearchFailed:      {ResearchResearching},
}

func (s ResearchStatus) Valid() bool {
	_, ok := researchTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s ResearchStatus) CanTransitionTo(next ResearchStatus) bool {
	return contains(researchTransitions[s], next)
}

// ResearchSourcesOf lists every status that may legally move to next.
// Used to build conditional updates so the check and the write happen in one statement.
func ResearchSourcesOf(next ResearchStatus) []ResearchStatus {
	var out []ResearchStatus
	for from, tos := range researchTransitions {
		if contains(tos, next) {
			out = append(out, from)
		}
	}
	return out
}

// EmailStatus tracks an outreach email from draft to delivery.
type EmailStatus string

const (
	EmailDraft    EmailStatus = "draft"
	EmailApproved EmailStatus = "approved"
	EmailSending  EmailStatus = "sending"
	EmailSent     EmailStatus = "sent"
	// EmailFailed is part of the stored vocabulary but nothing transitions into it;
	// a failed send reverts to draft.
	EmailFailed EmailStatus = "failed"
)

var emailTransitions = map[EmailStatus][]EmailStatus{
	EmailDraft:    {EmailDraft, EmailApproved},
	EmailApproved: {EmailApproved, EmailSending},
	EmailSending:  {EmailSent, EmailDraft},
	EmailSent:     {},
	EmailFailed:   {},
}

func (s EmailStatus) Valid() bool {
	_, ok := emailTransitions[s]
	return ok
}

func (s EmailStatus) CanTransitionTo(next EmailStatus) bool {
	return contains(emailTransitions[s], next)
}

// Editable reports whether subject and body may still change.
func (s EmailStatus) Editable() bool {
	return s == EmailDraft
}

func EmailSourcesOf(next EmailStatus) []EmailStatus {
	var out []EmailStatus
	for from, tos := range emailTransitions {
		if contains(tos, next) {
			out = append(out, from)
		}
	}
	return out
}

// TransitionError is returned when a status change is not in the transition table.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %s to %s", e.Entity, e.From, e.To)
}

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

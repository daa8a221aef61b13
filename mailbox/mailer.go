package mailbox

import (
	"context"
	"fmt"

	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Sender delivers one message from a connected mailbox.
type Sender interface {
	Send(ctx context.Context, msg Message) (*Receipt, error)
}

// Mailer sends through the Gmail API as the authenticated user.
type Mailer struct {
	svc  *gmailapi.Service
	from string
}

func NewMailer(ctx context.Context, from string, opts ...option.ClientOption) (*Mailer, error) {
	svc, err := gmailapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return &Mailer{svc: svc, from: from}, nil
}

func (m *Mailer) Send(ctx context.Context, msg Message) (*Receipt, error) {
	if msg.From == "" {
		msg.From = m.from
	}
	raw, err := BuildRawMessage(msg)
	if err != nil {
		return nil, err
	}

	sent, err := m.svc.Users.Messages.Send("me", &gmailapi.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gmail send: %w", err)
	}
	return &Receipt{MessageID: sent.Id, ThreadID: sent.ThreadId}, nil
}

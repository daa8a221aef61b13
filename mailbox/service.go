package mailbox

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"gorm.io/gorm"
)

// Status is the connection state reported to the dashboard.
type Status struct {
	Connected   bool       `json:"connected"`
	Email       string     `json:"email,omitempty"`
	ConnectedAt *time.Time `json:"connected_at,omitempty"`
}

// Service ties the OAuth flow to stored credentials.
type Service struct {
	oauth  *OAuth
	store  *TokenStore
	logger *logrus.Entry
}

func NewService(db *gorm.DB, oauth *OAuth, logger *logrus.Entry) *Service {
	if logger == nil {
		logger = logrus.WithField("component", "mailbox")
	}
	return &Service{oauth: oauth, store: NewTokenStore(db), logger: logger}
}

func (s *Service) AuthURL(state string) string {
	return s.oauth.AuthURL(state)
}

// Connect completes the OAuth callback and stores the credentials.
func (s *Service) Connect(ctx context.Context, userID uint, code string) (string, error) {
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return "", err
	}
	if tok.AccessToken == "" || tok.RefreshToken == "" {
		s.logger.WithField("user_id", userID).Warn("google returned incomplete tokens")
		return "", ErrIncompleteToken
	}

	address, err := s.oauth.ProfileEmail(ctx, tok)
	if err != nil {
		return "", err
	}
	if err := s.store.Save(ctx, userID, tok, address); err != nil {
		return "", err
	}

	s.logger.WithFields(logrus.Fields{"user_id": userID, "email": address}).Info("gmail connected")
	return address, nil
}

func (s *Service) Status(ctx context.Context, userID uint) (*Status, error) {
	_, row, err := s.store.Load(ctx, userID)
	if errors.Is(err, ErrNotConnected) {
		return &Status{Connected: false}, nil
	}
	if err != nil {
		return nil, err
	}
	connectedAt := row.CreatedAt
	return &Status{Connected: true, Email: row.EmailAddress, ConnectedAt: &connectedAt}, nil
}

func (s *Service) Disconnect(ctx context.Context, userID uint) error {
	return s.store.Delete(ctx, userID)
}

// SenderFor returns a Sender for the user's mailbox, or ErrNotConnected.
func (s *Service) SenderFor(ctx context.Context, userID uint) (Sender, error) {
	tok, row, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	ts := oauth2.ReuseTokenSource(tok, &persistingSource{
		base:   s.oauth.TokenSource(context.Background(), tok),
		store:  s.store,
		userID: userID,
		last:   tok.AccessToken,
	})
	return NewMailer(ctx, row.EmailAddress, option.WithTokenSource(ts))
}

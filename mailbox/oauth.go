package mailbox

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"reachround/config"
)

// Scopes requested on the consent screen.
var Scopes = []string{
	gmailapi.GmailSendScope,
	gmailapi.GmailReadonlyScope,
}

type OAuth struct {
	cfg *oauth2.Config
}

func NewOAuth(c config.OAuthConfig) *OAuth {
	return &OAuth{cfg: &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURI,
		Scopes:       Scopes,
		Endpoint:     google.Endpoint,
	}}
}

// AuthURL requests offline access and forces the consent prompt so Google
// always returns a refresh token.
func (o *OAuth) AuthURL(state string) string {
	return o.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (o *OAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := o.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return tok, nil
}

// TokenSource refreshes tok when it expires.
func (o *OAuth) TokenSource(ctx context.Context, tok *oauth2.Token) oauth2.TokenSource {
	return o.cfg.TokenSource(ctx, tok)
}

// ProfileEmail returns the address of the mailbox tok grants access to.
func (o *OAuth) ProfileEmail(ctx context.Context, tok *oauth2.Token) (string, error) {
	svc, err := gmailapi.NewService(ctx, option.WithTokenSource(o.TokenSource(ctx, tok)))
	if err != nil {
		return "", err
	}
	profile, err := svc.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get gmail profile: %w", err)
	}
	return profile.EmailAddress, nil
}

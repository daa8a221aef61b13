package mailbox

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"reachround/config"
	"reachround/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	prev := config.AppConfig
	config.AppConfig.EncryptionKey = "0123456789abcdef0123456789abcdef"
	t.Cleanup(func() { config.AppConfig = prev })

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, config.MigrateDB(db))
	return db
}

type staticSource struct {
	tok   *oauth2.Token
	err   error
	calls int
}

func (s *staticSource) Token() (*oauth2.Token, error) {
	s.calls++
	return s.tok, s.err
}

func TestBuildRawMessage(t *testing.T) {
	t.Run("Success - Plain text RFC 2822", func(t *testing.T) {
		raw, err := BuildRawMessage(Message{
			From:    "founder@acme.io",
			To:      "jane@sequoia.com",
			Subject: "Your Stripe bet",
			Body:    "Hi Jane,\n\nQuick note.",
		})
		require.NoError(t, err)
		assert.NotContains(t, raw, "=")
		assert.NotContains(t, raw, "+")
		assert.NotContains(t, raw, "/")

		decoded, err := base64.RawURLEncoding.DecodeString(raw)
		require.NoError(t, err)
		text := string(decoded)
		assert.Contains(t, text, "From: founder@acme.io")
		assert.Contains(t, text, "To: jane@sequoia.com")
		assert.Contains(t, text, "Subject: Your Stripe bet")
		assert.Contains(t, text, "text/plain; charset=UTF-8")
		assert.Contains(t, text, "Quick note.")
	})

	t.Run("Error - Missing recipient", func(t *testing.T) {
		_, err := BuildRawMessage(Message{Subject: "Hi", Body: "Body"})
		assert.Error(t, err)
	})
}

func TestTokenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Save encrypts and Load decrypts", func(t *testing.T) {
		db := setupTestDB(t)
		store := NewTokenStore(db)
		expiry := time.Now().Add(time.Hour).Truncate(time.Second)

		err := store.Save(ctx, 1, &oauth2.Token{AccessToken: "ya29.a", RefreshToken: "1//r", TokenType: "Bearer", Expiry: expiry}, "founder@acme.io")
		require.NoError(t, err)

		var row models.GmailToken
		require.NoError(t, db.Where("user_id = ?", 1).First(&row).Error)
		assert.NotEqual(t, "ya29.a", row.AccessToken)
		assert.NotEqual(t, "1//r", row.RefreshToken)

		tok, loaded, err := store.Load(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "ya29.a", tok.AccessToken)
		assert.Equal(t, "1//r", tok.RefreshToken)
		assert.Equal(t, "founder@acme.io", loaded.EmailAddress)
	})

	t.Run("Success - Save twice keeps one row", func(t *testing.T) {
		db := setupTestDB(t)
		store := NewTokenStore(db)

		require.NoError(t, store.Save(ctx, 1, &oauth2.Token{AccessToken: "one", RefreshToken: "r1"}, "a@acme.io"))
		require.NoError(t, store.Save(ctx, 1, &oauth2.Token{AccessToken: "two", RefreshToken: "r2"}, "b@acme.io"))

		var count int64
		db.Model(&models.GmailToken{}).Count(&count)
		assert.EqualValues(t, 1, count)

		tok, row, err := store.Load(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "two", tok.AccessToken)
		assert.Equal(t, "b@acme.io", row.EmailAddress)
	})

	t.Run("Error - Not connected", func(t *testing.T) {
		store := NewTokenStore(setupTestDB(t))

		_, _, err := store.Load(ctx, 42)
		assert.ErrorIs(t, err, ErrNotConnected)
	})

	t.Run("Success - Delete", func(t *testing.T) {
		store := NewTokenStore(setupTestDB(t))
		require.NoError(t, store.Save(ctx, 1, &oauth2.Token{AccessToken: "a", RefreshToken: "r"}, "a@acme.io"))

		require.NoError(t, store.Delete(ctx, 1))
		_, _, err := store.Load(ctx, 1)
		assert.ErrorIs(t, err, ErrNotConnected)
	})
}

func TestPersistingSource(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Refreshed token is written back", func(t *testing.T) {
		store := NewTokenStore(setupTestDB(t))
		require.NoError(t, store.Save(ctx, 7, &oauth2.Token{AccessToken: "old", RefreshToken: "keep-me"}, "a@acme.io"))

		src := &persistingSource{
			base:   &staticSource{tok: &oauth2.Token{AccessToken: "new", Expiry: time.Now().Add(time.Hour)}},
			store:  store,
			userID: 7,
			last:   "old",
		}
		tok, err := src.Token()
		require.NoError(t, err)
		assert.Equal(t, "new", tok.AccessToken)

		stored, _, err := store.Load(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "new", stored.AccessToken)
		assert.Equal(t, "keep-me", stored.RefreshToken)
	})

	t.Run("Error - Refresh failure is returned", func(t *testing.T) {
		store := NewTokenStore(setupTestDB(t))
		src := &persistingSource{base: &staticSource{err: errors.New("invalid_grant")}, store: store, userID: 7}

		_, err := src.Token()
		assert.Error(t, err)
	})
}

func TestMailer_Send(t *testing.T) {
	var gotRaw string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/users/me/messages/send") {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		var msg gmailapi.Message
		_ = json.Unmarshal(body, &msg)
		gotRaw = msg.Raw

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg-1","threadId":"thread-1"}`))
	}))
	defer srv.Close()

	mailer, err := NewMailer(context.Background(), "founder@acme.io",
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	receipt, err := mailer.Send(context.Background(), Message{To: "jane@sequoia.com", Subject: "Hello", Body: "Hi Jane"})
	require.NoError(t, err)
	assert.Equal(t, "msg-1", receipt.MessageID)
	assert.Equal(t, "thread-1", receipt.ThreadID)

	decoded, err := base64.RawURLEncoding.DecodeString(gotRaw)
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "From: founder@acme.io")
}

func TestService_StatusAndSenderFor(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := NewService(db, NewOAuth(config.OAuthConfig{ClientID: "id", ClientSecret: "secret", RedirectURI: "http://localhost/cb"}), nil)

	status, err := svc.Status(ctx, 1)
	require.NoError(t, err)
	assert.False(t, status.Connected)

	_, err = svc.SenderFor(ctx, 1)
	assert.ErrorIs(t, err, ErrNotConnected)

	require.NoError(t, svc.store.Save(ctx, 1, &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: time.Now().Add(time.Hour)}, "founder@acme.io"))

	status, err = svc.Status(ctx, 1)
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, "founder@acme.io", status.Email)

	sender, err := svc.SenderFor(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, sender)

	require.NoError(t, svc.Disconnect(ctx, 1))
	status, err = svc.Status(ctx, 1)
	require.NoError(t, err)
	assert.False(t, status.Connected)
}

func TestOAuth_AuthURL(t *testing.T) {
	o := NewOAuth(config.OAuthConfig{ClientID: "client-id", RedirectURI: "http://localhost:8080/auth/gmail/callback"})

	u := o.AuthURL("state-123")
	assert.Contains(t, u, "accounts.google.com")
	assert.Contains(t, u, "access_type=offline")
	assert.Contains(t, u, "prompt=consent")
	assert.Contains(t, u, "state=state-123")
	assert.Contains(t, u, "gmail.send")
}

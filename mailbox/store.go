package mailbox

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"reachround/models"
	"reachround/utils"
)

var (
	ErrNotConnected    = errors.New("gmail not connected")
	ErrIncompleteToken = errors.New("gmail oauth returned no refresh token")
)

// TokenStore persists mailbox credentials encrypted at rest.
type TokenStore struct {
	db *gorm.DB
}

func NewTokenStore(db *gorm.DB) *TokenStore {
	return &TokenStore{db: db}
}

// Save upserts the credentials for userID.
func (s *TokenStore) Save(ctx context.Context, userID uint, tok *oauth2.Token, emailAddress string) error {
	access, err := utils.Encrypt(tok.AccessToken)
	if err != nil {
		return fmt.Errorf("encrypt access token: %w", err)
	}
	refresh, err := utils.Encrypt(tok.RefreshToken)
	if err != nil {
		return fmt.Errorf("encrypt refresh token: %w", err)
	}

	scope, _ := tok.Extra("scope").(string)
	row := models.GmailToken{
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    tok.Type(),
		ExpiresAt:    tok.Expiry,
		Scope:        scope,
		EmailAddress: emailAddress,
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "token_type", "expires_at", "scope", "email_address", "updated_at"}),
	}).Create(&row).Error
}

// Load returns the decrypted token and its row, or ErrNotConnected.
func (s *TokenStore) Load(ctx context.Context, userID uint) (*oauth2.Token, *models.GmailToken, error) {
	var row models.GmailToken
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotConnected
		}
		return nil, nil, err
	}

	access, err := utils.Decrypt(row.AccessToken)
	if err != nil {
		return nil, nil, fmt.Errorf("decrypt access token: %w", err)
	}
	refresh, err := utils.Decrypt(row.RefreshToken)
	if err != nil {
		return nil, nil, fmt.Errorf("decrypt refresh token: %w", err)
	}

	return &oauth2.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    row.TokenType,
		Expiry:       row.ExpiresAt,
	}, &row, nil
}

// UpdateAccess stores a refreshed access token. Google may omit the refresh
// token on refresh, in which case the stored one is kept.
func (s *TokenStore) UpdateAccess(ctx context.Context, userID uint, tok *oauth2.Token) error {
	access, err := utils.Encrypt(tok.AccessToken)
	if err != nil {
		return err
	}
	updates := map[string]interface{}{
		"access_token": access,
		"expires_at":   tok.Expiry,
	}
	if tok.RefreshToken != "" {
		refresh, err := utils.Encrypt(tok.RefreshToken)
		if err != nil {
			return err
		}
		updates["refresh_token"] = refresh
	}
	return s.db.WithContext(ctx).Model(&models.GmailToken{}).Where("user_id = ?", userID).Updates(updates).Error
}

func (s *TokenStore) Delete(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.GmailToken{}).Error
}

// persistingSource writes refreshed tokens back to the store.
type persistingSource struct {
	mu     sync.Mutex
	base   oauth2.TokenSource
	store  *TokenStore
	userID uint
	last   string
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tok, err := p.base.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != p.last {
		if err := p.store.UpdateAccess(context.Background(), p.userID, tok); err != nil {
			utils.LogError("gmail_token_persist", err, map[string]interface{}{"user_id": p.userID})
		}
		p.last = tok.AccessToken
	}
	return tok, nil
}

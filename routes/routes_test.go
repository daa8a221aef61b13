package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"reachround/agents"
	"reachround/config"
	controller "reachround/controllers"
	"reachround/mailbox"
	"reachround/models"
	"reachround/services"
	"reachround/utils"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, config.MigrateDB(db))

	prevDB, prevCfg := config.DB, config.AppConfig
	config.DB = db
	config.AppConfig.JWTSecret = "test-jwt-secret"
	config.AppConfig.EncryptionKey = "0123456789abcdef0123456789abcdef"
	t.Cleanup(func() {
		config.DB = prevDB
		config.AppConfig = prevCfg
	})
	return db
}

type noFinder struct{}

func (noFinder) Find(_ context.Context, _ agents.FindInput) ([]agents.InvestorMatch, error) {
	return []agents.InvestorMatch{}, nil
}

func newApp(t *testing.T, db *gorm.DB) *fiber.App {
	t.Helper()
	log := logrus.NewEntry(logrus.New())
	mb := mailbox.NewService(db, mailbox.NewOAuth(config.OAuthConfig{ClientID: "id", ClientSecret: "secret"}), log)

	h := Handlers{
		Projects:  controller.NewProjectController(services.NewProjectService(db), services.NewStatsService(db), log),
		Campaigns: controller.NewCampaignController(services.NewCampaignService(db), log),
		Investors: controller.NewInvestorController(
			services.NewInvestorService(db),
			services.NewDiscoveryService(db, noFinder{}),
			services.NewResearchService(db, nil),
			log,
		),
		Emails:   controller.NewEmailController(services.NewEmailService(db, nil), log),
		Dispatch: controller.NewDispatchController(services.NewDispatchService(db, mb, config.DispatchConfig{}), log),
		Gmail:    controller.NewGmailController(mb, "http://localhost:3000", false, log),
	}

	app := fiber.New()
	SetupRoutes(app, h, Options{AIRequestsPerMinute: 1})
	return app
}

func TestRoutes(t *testing.T) {
	db := setupTestDB(t)
	app := newApp(t, db)

	user := models.User{Email: "founder@example.com", PasswordHash: "x", IsActive: true, TokenVersion: 1}
	require.NoError(t, db.Create(&user).Error)
	project := models.Project{UserID: user.ID, Name: "Acme", OneLiner: "Payroll for robots"}
	require.NoError(t, db.Create(&project).Error)
	access, _, err := utils.GenerateJWTToken(&user)
	require.NoError(t, err)

	call := func(method, path string, authed bool) *http.Response {
		req := httptest.NewRequest(method, path, nil)
		if authed {
			req.Header.Set("Authorization", "Bearer "+access)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	t.Run("Error - API requires a token", func(t *testing.T) {
		assert.Equal(t, fiber.StatusUnauthorized, call(http.MethodGet, "/api/v1/projects", false).StatusCode)
	})

	t.Run("Success - Authenticated list", func(t *testing.T) {
		assert.Equal(t, fiber.StatusOK, call(http.MethodGet, "/api/v1/projects", true).StatusCode)
	})

	t.Run("Error - AI endpoints are rate limited per user", func(t *testing.T) {
		path := "/api/v1/projects/" + strconv.FormatUint(uint64(project.ID), 10) + "/investors/find"
		assert.Equal(t, fiber.StatusOK, call(http.MethodPost, path, true).StatusCode)
		assert.Equal(t, fiber.StatusTooManyRequests, call(http.MethodPost, path, true).StatusCode)
	})

	t.Run("Success - Gmail status when not connected", func(t *testing.T) {
		resp := call(http.MethodGet, "/auth/gmail/status", true)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("Success - Gmail connect redirects to Google", func(t *testing.T) {
		resp := call(http.MethodGet, "/auth/gmail", true)
		assert.Equal(t, fiber.StatusTemporaryRedirect, resp.StatusCode)
		assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "https://accounts.google.com/"))
	})

	t.Run("Error - Websocket route needs an upgrade", func(t *testing.T) {
		assert.Equal(t, fiber.StatusUpgradeRequired, call(http.MethodGet, "/ws/dispatch", true).StatusCode)
	})

	t.Run("Error - Unknown path", func(t *testing.T) {
		assert.Equal(t, fiber.StatusNotFound, call(http.MethodGet, "/nope", false).StatusCode)
	})

	t.Run("Success - Metrics are public", func(t *testing.T) {
		assert.Equal(t, fiber.StatusOK, call(http.MethodGet, "/metrics", false).StatusCode)
	})
}

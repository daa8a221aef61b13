package main

import (
	"context"
	"io"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"reachround/agents"
	"reachround/agents/llm"
	"reachround/config"
	controller "reachround/controllers"
	"reachround/mailbox"
	"reachround/middleware"
	"reachround/routes"
	"reachround/services"
	"reachround/utils"
	"reachround/worker"
)

func main() {
	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	flush, err := config.InitLogging()
	if err != nil {
		logrus.Warnf("Sentry disabled: %v", err)
	}
	defer flush()

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	db := config.DB
	cfg := config.AppConfig

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := llm.New(ctx, llm.Config{
		Provider:    cfg.LLM.Provider,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}, logrus.WithField("component", "llm"))
	if err != nil {
		logrus.Fatalf("Failed to initialize LLM client: %v", err)
	}
	if closer, ok := client.(io.Closer); ok {
		defer closer.Close()
	}

	mailboxes := mailbox.NewService(db, mailbox.NewOAuth(cfg.Google), logrus.WithField("component", "mailbox"))

	research := services.NewResearchService(db, agents.NewResearcher(client, nil))
	dispatch := services.NewDispatchService(db, mailboxes, cfg.Dispatch)

	handlers := routes.Handlers{
		Projects: controller.NewProjectController(
			services.NewProjectService(db),
			services.NewStatsService(db),
			logrus.WithField("controller", "projects"),
		),
		Campaigns: controller.NewCampaignController(services.NewCampaignService(db), logrus.WithField("controller", "campaigns")),
		Investors: controller.NewInvestorController(
			services.NewInvestorService(db),
			services.NewDiscoveryService(db, agents.NewInvestorFinder(client, nil)),
			research,
			logrus.WithField("controller", "investors"),
		),
		Emails:   controller.NewEmailController(services.NewEmailService(db, agents.NewEmailWriter(client, nil)), logrus.WithField("controller", "emails")),
		Dispatch: controller.NewDispatchController(dispatch, logrus.WithField("controller", "dispatch")),
		Gmail: controller.NewGmailController(
			mailboxes,
			cfg.FrontendURL,
			cfg.Environment == "production",
			logrus.WithField("controller", "gmail"),
		),
	}

	// Start the research reaper
	reaper := worker.NewResearchReaper(research, cfg.ResearchReaperInterval, cfg.ResearchStaleAfter, nil)
	go reaper.Start(ctx)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "ReachRound",
		ErrorHandler: errorHandler,
	})

	app.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins...)))
	app.Use(middleware.Metrics())

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "running",
			"version": "1.0.0",
		})
	})

	routes.SetupRoutes(app, handlers, routes.Options{
		AIRequestsPerMinute: cfg.RateLimitAIPerMinute,
		AIStorage:           middleware.NewRateLimitStorage(cfg.Redis),
		LLMTimeout:          cfg.LLM.Timeout,
	})

	go func() {
		<-ctx.Done()
		logrus.Info("Shutting down server...")
		if err := app.Shutdown(); err != nil {
			logrus.WithError(err).Error("Server shutdown failed")
		}
	}()

	// Start server
	logrus.Infof("🚀 Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return utils.ErrorResponse(c, fe.Code, fe.Message, nil)
	}
	utils.LogError("unhandled", err, map[string]interface{}{"path": c.Path(), "method": c.Method()})
	return utils.RespondError(c, err)
}

package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	controller "reachround/controllers"
	"reachround/middleware"
)

// Handlers bundles the controllers the router mounts.
type Handlers struct {
	Projects  *controller.ProjectController
	Campaigns *controller.CampaignController
	Investors *controller.InvestorController
	Emails    *controller.EmailController
	Dispatch  *controller.DispatchController
	Gmail     *controller.GmailController
}

type Options struct {
	AIRequestsPerMinute int
	AIStorage           fiber.Storage
	LLMTimeout          time.Duration
}

var accessLog = logger.Config{
	Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
}

func SetupAuthRoutes(app *fiber.App, h Handlers) {
	auth := app.Group("/auth", logger.New(accessLog))

	// Public auth endpoints (no authentication required)
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/refresh", controller.RefreshToken)

	// Protected auth endpoints (require valid JWT)
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Get("/me", controller.GetCurrentUser)

	gmail := protectedAuth.Group("/gmail")
	gmail.Get("/", h.Gmail.Connect)
	gmail.Get("/callback", h.Gmail.Callback)
	gmail.Get("/status", h.Gmail.Status)
	gmail.Post("/disconnect", h.Gmail.Disconnect)

	logrus.Debug("Authentication routes initialized")
}

func SetupAPIRoutes(app *fiber.App, h Handlers, opts Options) {
	api := app.Group("/api/v1", middleware.Protected(), logger.New(accessLog))

	// Model-backed endpoints share one per-user budget.
	ai := []fiber.Handler{
		middleware.AIRateLimiter(opts.AIRequestsPerMinute, opts.AIStorage),
		middleware.Deadline(opts.LLMTimeout),
	}
	withAI := func(handler fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, ai...), handler)
	}

	api.Get("/stats", h.Projects.GetStats)

	project := api.Group("/projects")
	project.Get("/", h.Projects.ListProjects)
	project.Post("/", h.Projects.CreateProject)
	project.Get("/:id", h.Projects.GetProject)
	project.Put("/:id", h.Projects.UpdateProject)
	project.Delete("/:id", h.Projects.DeleteProject)
	project.Post("/:id/investors/find", withAI(h.Investors.FindInvestors)...)
	project.Get("/:id/investors", h.Investors.ListProjectInvestors)
	project.Post("/:id/investors", h.Investors.CreateInvestor)
	project.Post("/:id/investors/batch", h.Investors.BatchCreateInvestors)
	project.Get("/:id/campaigns", h.Campaigns.ListProjectCampaigns)
	project.Post("/:id/campaigns", h.Campaigns.CreateCampaign)
	project.Get("/:id/emails", h.Emails.ListProjectEmails)
	project.Post("/:id/emails/send-approved", h.Dispatch.SendApprovedProject)

	campaign := api.Group("/campaigns")
	campaign.Get("/:id", h.Campaigns.GetCampaign)
	campaign.Put("/:id", h.Campaigns.UpdateCampaign)
	campaign.Delete("/:id", h.Campaigns.DeleteCampaign)
	campaign.Get("/:id/investors", h.Investors.ListCampaignInvestors)
	campaign.Get("/:id/emails", h.Emails.ListCampaignEmails)
	campaign.Post("/:id/emails/send-approved", h.Dispatch.SendApprovedCampaign)

	investor := api.Group("/investors")
	investor.Get("/:id", h.Investors.GetInvestor)
	investor.Put("/:id", h.Investors.UpdateInvestor)
	investor.Delete("/:id", h.Investors.DeleteInvestor)
	investor.Post("/:id/research", withAI(h.Investors.ResearchInvestor)...)
	investor.Post("/:id/generate-email", withAI(h.Emails.GenerateEmail)...)

	email := api.Group("/emails")
	email.Get("/", h.Emails.ListEmails)
	email.Get("/:id", h.Emails.GetEmail)
	email.Put("/:id", h.Emails.UpdateEmail)
	email.Delete("/:id", h.Emails.RejectEmail)
	email.Post("/:id/approve", h.Emails.ApproveEmail)
	email.Post("/:id/regenerate", withAI(h.Emails.RegenerateEmail)...)
	email.Get("/:id/versions", h.Emails.GetEmailVersions)

	logrus.Debug("API routes initialized")
}

// SetupWebSocketRoutes mounts live dispatch. The browser authenticates with
// the access_token cookie.
func SetupWebSocketRoutes(app *fiber.App, h Handlers) {
	ws := app.Group("/ws", middleware.Protected(), func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	ws.Get("/dispatch", websocket.New(h.Dispatch.DispatchWS))
}

func SetupRoutes(app *fiber.App, h Handlers, opts Options) {
	app.Get("/metrics", middleware.MetricsHandler())

	SetupAuthRoutes(app, h)
	SetupAPIRoutes(app, h, opts)
	SetupWebSocketRoutes(app, h)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Not Found",
		})
	})
}

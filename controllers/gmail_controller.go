package controller

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"reachround/mailbox"
	"reachround/utils"
)

const gmailStateCookie = "gmail_oauth_state"

// Mailbox is the part of mailbox.Service the OAuth endpoints need.
type Mailbox interface {
	AuthURL(state string) string
	Connect(ctx context.Context, userID uint, code string) (string, error)
	Status(ctx context.Context, userID uint) (*mailbox.Status, error)
	Disconnect(ctx context.Context, userID uint) error
}

type GmailController struct {
	Mailbox     Mailbox
	FrontendURL string
	Secure      bool
	Logger      *logrus.Entry
}

func NewGmailController(mb Mailbox, frontendURL string, secure bool, logger *logrus.Entry) *GmailController {
	return &GmailController{
		Mailbox:     mb,
		FrontendURL: strings.TrimRight(frontendURL, "/"),
		Secure:      secure,
		Logger:      logger,
	}
}

// Connect redirects to Google's consent screen.
func (gc *GmailController) Connect(c *fiber.Ctx) error {
	state := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     gmailStateCookie,
		Value:    state,
		Path:     "/auth/gmail",
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		Secure:   gc.Secure,
		SameSite: "Lax",
	})
	return c.Redirect(gc.Mailbox.AuthURL(state), fiber.StatusTemporaryRedirect)
}

func (gc *GmailController) Callback(c *fiber.Ctx) error {
	userID := currentUserID(c)
	log := gc.Logger.WithField("user_id", userID)

	expected := c.Cookies(gmailStateCookie)
	c.ClearCookie(gmailStateCookie)

	if reason := c.Query("error"); reason != "" {
		log.WithField("reason", reason).Warn("gmail consent denied")
		return gc.redirect(c, "error=gmail_oauth_failed")
	}
	state, code := c.Query("state"), c.Query("code")
	if expected == "" || state != expected || code == "" {
		log.Warn("gmail oauth state mismatch")
		return gc.redirect(c, "error=gmail_oauth_failed")
	}

	address, err := gc.Mailbox.Connect(c.UserContext(), userID, code)
	if err != nil {
		utils.LogError("gmail_connect", err, map[string]interface{}{"user_id": userID})
		return gc.redirect(c, "error=gmail_connection_failed")
	}

	utils.LogEvent("gmail_connected", map[string]interface{}{"user_id": userID, "email": address})
	return gc.redirect(c, "success=gmail_connected")
}

func (gc *GmailController) Status(c *fiber.Ctx) error {
	status, err := gc.Mailbox.Status(c.UserContext(), currentUserID(c))
	if err != nil {
		return utils.RespondError(c, err)
	}
	body := fiber.Map{"connected": status.Connected}
	if status.Connected {
		body["email_address"] = status.Email
		body["connected_at"] = status.ConnectedAt
	}
	return c.JSON(body)
}

func (gc *GmailController) Disconnect(c *fiber.Ctx) error {
	if err := gc.Mailbox.Disconnect(c.UserContext(), currentUserID(c)); err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (gc *GmailController) redirect(c *fiber.Ctx, query string) error {
	return c.Redirect(gc.FrontendURL+"/dashboard?"+query, fiber.StatusTemporaryRedirect)
}

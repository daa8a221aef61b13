package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"reachround/services"
	"reachround/utils"
)

type DispatchController struct {
	Dispatch *services.DispatchService
	Logger   *logrus.Entry
}

func NewDispatchController(dispatch *services.DispatchService, logger *logrus.Entry) *DispatchController {
	return &DispatchController{Dispatch: dispatch, Logger: logger}
}

func (dc *DispatchController) SendApprovedCampaign(c *fiber.Ctx) error {
	return dc.sendApproved(c, services.ScopeCampaign)
}

func (dc *DispatchController) SendApprovedProject(c *fiber.Ctx) error {
	return dc.sendApproved(c, services.ScopeProject)
}

func (dc *DispatchController) sendApproved(c *fiber.Ctx, scope services.DispatchScope) error {
	scopeID, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}

	result, err := dc.Dispatch.SendApproved(c.UserContext(), currentUserID(c), scope, scopeID, nil)
	if err != nil {
		// Cancelled mid-run: some emails may already be out
		if result != nil {
			dc.Logger.WithFields(logrus.Fields{
				"scope":    scope,
				"scope_id": scopeID,
				"sent":     result.Sent,
				"failed":   result.Failed,
			}).WithError(err).Warn("dispatch stopped early")
		}
		return utils.RespondError(c, err)
	}

	body := fiber.Map{
		"sent":    result.Sent,
		"failed":  result.Failed,
		"results": result.Results,
	}
	// Nothing went out
	if result.AllFailed() {
		body["success"] = false
		body["error"] = "Failed to send any emails"
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	}
	return c.JSON(utils.SuccessResponse(body))
}

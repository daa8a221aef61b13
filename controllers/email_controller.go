package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"reachround/models"
	"reachround/services"
	"reachround/utils"
)

type EmailController struct {
	Emails *services.EmailService
	Logger *logrus.Entry
}

func NewEmailController(emails *services.EmailService, logger *logrus.Entry) *EmailController {
	return &EmailController{Emails: emails, Logger: logger}
}

type regenerateRequest struct {
	Feedback string `json:"feedback"`
}

func (ec *EmailController) GenerateEmail(c *fiber.Ctx) error {
	investorID, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}

	email, err := ec.Emails.Generate(c.UserContext(), currentUserID(c), investorID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(fiber.Map{"email": email}))
}

func (ec *EmailController) RegenerateEmail(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	var req regenerateRequest
	if err := parseBody(c, &req); err != nil {
		return utils.RespondError(c, err)
	}

	email, err := ec.Emails.Regenerate(c.UserContext(), currentUserID(c), id, req.Feedback)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"email": email}))
}

// ListEmails serves the approval queue: ?status=&project_id=&campaign_id=
func (ec *EmailController) ListEmails(c *fiber.Ctx) error {
	filter, err := emailFilterFromQuery(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return ec.list(c, filter)
}

func (ec *EmailController) ListProjectEmails(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	filter, err := emailFilterFromQuery(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	filter.ProjectID = &projectID
	return ec.list(c, filter)
}

func (ec *EmailController) ListCampaignEmails(c *fiber.Ctx) error {
	campaignID, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	filter, err := emailFilterFromQuery(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	filter.CampaignID = &campaignID
	return ec.list(c, filter)
}

func (ec *EmailController) list(c *fiber.Ctx, filter services.EmailFilter) error {
	emails, err := ec.Emails.List(c.UserContext(), currentUserID(c), filter)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"emails": emails}))
}

func (ec *EmailController) GetEmail(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}

	email, err := ec.Emails.Get(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"email": email}))
}

func (ec *EmailController) GetEmailVersions(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}

	versions, err := ec.Emails.Versions(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"versions": versions}))
}

func (ec *EmailController) UpdateEmail(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	var input services.EditEmailInput
	if err := parseBody(c, &input); err != nil {
		return utils.RespondError(c, err)
	}

	email, err := ec.Emails.Edit(c.UserContext(), currentUserID(c), id, input)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"email": email}))
}

func (ec *EmailController) ApproveEmail(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}

	email, err := ec.Emails.Approve(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"email": email}))
}

// RejectEmail deletes a draft.
func (ec *EmailController) RejectEmail(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}

	if err := ec.Emails.Reject(c.UserContext(), currentUserID(c), id); err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Email rejected"}))
}

func emailFilterFromQuery(c *fiber.Ctx) (services.EmailFilter, error) {
	var filter services.EmailFilter
	if s := c.Query("status"); s != "" {
		status := models.EmailStatus(s)
		filter.Status = &status
	}

	projectID, ok := utils.ParseUintPtr(c.Query("project_id"))
	if !ok {
		return filter, utils.Validation("Invalid project_id")
	}
	campaignID, ok := utils.ParseUintPtr(c.Query("campaign_id"))
	if !ok {
		return filter, utils.Validation("Invalid campaign_id")
	}
	filter.ProjectID = projectID
	filter.CampaignID = campaignID
	return filter, nil
}

package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"reachround/services"
	"reachround/utils"
)

type CampaignController struct {
	Campaigns *services.CampaignService
	Logger    *logrus.Entry
}

func NewCampaignController(campaigns *services.CampaignService, logger *logrus.Entry) *CampaignController {
	return &CampaignController{Campaigns: campaigns, Logger: logger}
}

func (cc *CampaignController) ListProjectCampaigns(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}

	campaigns, err := cc.Campaigns.ListByProject(c.UserContext(), currentUserID(c), projectID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"campaigns": campaigns}))
}

func (cc *CampaignController) CreateCampaign(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}

	// Parse request body
	var input services.CreateCampaignInput
	if err := parseBody(c, &input); err != nil {
		return utils.RespondError(c, err)
	}

	campaign, err := cc.Campaigns.Create(c.UserContext(), currentUserID(c), projectID, input)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(fiber.Map{"campaign": campaign}))
}

func (cc *CampaignController) GetCampaign(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}

	campaign, err := cc.Campaigns.Get(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"campaign": campaign}))
}

func (cc *CampaignController) UpdateCampaign(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	var input services.UpdateCampaignInput
	if err := parseBody(c, &input); err != nil {
		return utils.RespondError(c, err)
	}

	campaign, err := cc.Campaigns.Update(c.UserContext(), currentUserID(c), id, input)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"campaign": campaign}))
}

func (cc *CampaignController) DeleteCampaign(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}

	if err := cc.Campaigns.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Campaign deleted"}))
}

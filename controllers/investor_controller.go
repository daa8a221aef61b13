package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"reachround/services"
	"reachround/utils"
)

type InvestorController struct {
	Investors *services.InvestorService
	Discovery *services.DiscoveryService
	Research  *services.ResearchService
	Logger    *logrus.Entry
}

func NewInvestorController(investors *services.InvestorService, discovery *services.DiscoveryService, research *services.ResearchService, logger *logrus.Entry) *InvestorController {
	return &InvestorController{Investors: investors, Discovery: discovery, Research: research, Logger: logger}
}

type batchInvestorsRequest struct {
	Investors []services.InvestorInput `json:"investors"`
}

func (ic *InvestorController) ListProjectInvestors(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}

	investors, err := ic.Investors.ListByProject(c.UserContext(), currentUserID(c), projectID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"investors": investors}))
}

func (ic *InvestorController) ListCampaignInvestors(c *fiber.Ctx) error {
	campaignID, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}

	investors, err := ic.Investors.ListByCampaign(c.UserContext(), currentUserID(c), campaignID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"investors": investors}))
}

func (ic *InvestorController) CreateInvestor(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	var input services.InvestorInput
	if err := parseBody(c, &input); err != nil {
		return utils.RespondError(c, err)
	}

	investor, err := ic.Investors.Create(c.UserContext(), currentUserID(c), projectID, input)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(fiber.Map{"investor": investor}))
}

// BatchCreateInvestors adds discovered investors. Each item succeeds or fails on its own.
func (ic *InvestorController) BatchCreateInvestors(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	var req batchInvestorsRequest
	if err := parseBody(c, &req); err != nil {
		return utils.RespondError(c, err)
	}

	result, err := ic.Investors.BatchCreate(c.UserContext(), currentUserID(c), projectID, req.Investors)
	if err != nil {
		return utils.RespondError(c, err)
	}

	body := fiber.Map{
		"success": result.Created > 0,
		"created": result.Created,
		"failed":  result.Failed,
		"results": result.Results,
	}
	if result.Created == 0 {
		body["error"] = "No investors were added"
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}
	return c.Status(fiber.StatusCreated).JSON(body)
}

func (ic *InvestorController) GetInvestor(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}

	investor, err := ic.Investors.Get(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"investor": investor}))
}

func (ic *InvestorController) UpdateInvestor(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	var input services.UpdateInvestorInput
	if err := parseBody(c, &input); err != nil {
		return utils.RespondError(c, err)
	}

	investor, err := ic.Investors.Update(c.UserContext(), currentUserID(c), id, input)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"investor": investor}))
}

func (ic *InvestorController) DeleteInvestor(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}

	if err := ic.Investors.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Investor deleted"}))
}

func (ic *InvestorController) FindInvestors(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	var input services.FindInvestorsInput
	if len(c.Body()) > 0 {
		if err := parseBody(c, &input); err != nil {
			return utils.RespondError(c, err)
		}
	}

	matches, err := ic.Discovery.Find(c.UserContext(), currentUserID(c), projectID, input)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"investors": matches}))
}

func (ic *InvestorController) ResearchInvestor(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}

	investor, err := ic.Research.Research(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"research": investor.Research,
		"investor": investor,
	}))
}

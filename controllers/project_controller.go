package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"reachround/services"
	"reachround/utils"
)

type ProjectController struct {
	Projects *services.ProjectService
	Stats    *services.StatsService
	Logger   *logrus.Entry
}

func NewProjectController(projects *services.ProjectService, stats *services.StatsService, logger *logrus.Entry) *ProjectController {
	return &ProjectController{Projects: projects, Stats: stats, Logger: logger}
}

func (pc *ProjectController) ListProjects(c *fiber.Ctx) error {
	projects, err := pc.Projects.List(c.UserContext(), currentUserID(c))
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"projects": projects}))
}

func (pc *ProjectController) CreateProject(c *fiber.Ctx) error {
	var input services.CreateProjectInput
	if err := parseBody(c, &input); err != nil {
		return utils.RespondError(c, err)
	}

	project, err := pc.Projects.Create(c.UserContext(), currentUserID(c), input)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(fiber.Map{"project": project}))
}

func (pc *ProjectController) GetProject(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}

	project, err := pc.Projects.Get(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"project": project}))
}

func (pc *ProjectController) UpdateProject(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	var input services.UpdateProjectInput
	if err := parseBody(c, &input); err != nil {
		return utils.RespondError(c, err)
	}

	project, err := pc.Projects.Update(c.UserContext(), currentUserID(c), id, input)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"project": project}))
}

func (pc *ProjectController) DeleteProject(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}

	if err := pc.Projects.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Project deleted"}))
}

// GetStats returns the dashboard counters.
func (pc *ProjectController) GetStats(c *fiber.Ctx) error {
	stats, err := pc.Stats.Dashboard(c.UserContext(), currentUserID(c))
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(stats)
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/faiscadev/flaglite/internal/apperr"
	"github.com/faiscadev/flaglite/internal/middleware"
	"github.com/faiscadev/flaglite/internal/service"
	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	projectService *service.ProjectService
}

func NewProjectHandler(projectService *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

func (h *ProjectHandler) List(c *gin.Context) {
	rc := requestContext(c)

	projects, err := h.projectService.ListProjects(c.Request.Context(), rc)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	out := make([]projectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, newProjectResponse(&projects[i]))
	}
	c.JSON(http.StatusOK, out)
}

type createProjectRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	rc := requestContext(c)
	project, _, err := h.projectService.CreateProject(c.Request.Context(), rc, req.Name)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newProjectResponse(project))
}

func (h *ProjectHandler) ListEnvironments(c *gin.Context) {
	projectID, err := parseProjectID(c)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	rc := requestContext(c)
	envs, err := h.projectService.ListEnvironments(c.Request.Context(), rc, projectID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newEnvironmentResponses(envs))
}

func parseProjectID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("pid"), 10, 64)
	if err != nil {
		return 0, apperr.BadRequest("invalid project id")
	}
	return id, nil
}

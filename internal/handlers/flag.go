package handlers

import (
	"net/http"

	"github.com/faiscadev/flaglite/internal/apperr"
	"github.com/faiscadev/flaglite/internal/domain"
	"github.com/faiscadev/flaglite/internal/middleware"
	"github.com/faiscadev/flaglite/internal/service"
	"github.com/gin-gonic/gin"
)

type FlagHandler struct {
	flagService *service.FlagService
}

func NewFlagHandler(flagService *service.FlagService) *FlagHandler {
	return &FlagHandler{flagService: flagService}
}

type flagEnvironmentValue struct {
	Enabled           bool `json:"enabled"`
	RolloutPercentage int  `json:"rollout"`
}

type flagResponse struct {
	Key          string                           `json:"key"`
	Name         string                           `json:"name"`
	Description  string                           `json:"description,omitempty"`
	Environments map[string]flagEnvironmentValue `json:"environments"`
}

func newFlagResponse(f *domain.FlagWithValues) flagResponse {
	envs := make(map[string]flagEnvironmentValue, len(f.Values))
	for name, v := range f.Values {
		envs[name] = flagEnvironmentValue{Enabled: v.Enabled, RolloutPercentage: v.RolloutPercentage}
	}
	return flagResponse{Key: f.Key, Name: f.Name, Description: f.Description, Environments: envs}
}

type createFlagRequest struct {
	Key         string `json:"key" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (h *FlagHandler) Create(c *gin.Context) {
	projectID, err := parseProjectID(c)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	var req createFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	rc := requestContext(c)
	flag, err := h.flagService.CreateFlag(c.Request.Context(), rc, projectID, req.Key, req.Name, req.Description)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newFlagResponse(flag))
}

func (h *FlagHandler) List(c *gin.Context) {
	projectID, err := parseProjectID(c)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	rc := requestContext(c)
	flags, err := h.flagService.ListFlags(c.Request.Context(), rc, projectID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	out := make([]flagResponse, 0, len(flags))
	for i := range flags {
		out = append(out, newFlagResponse(&flags[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *FlagHandler) Get(c *gin.Context) {
	projectID, err := parseProjectID(c)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	key := c.Param("key")

	rc := requestContext(c)
	flag, err := h.flagService.GetFlag(c.Request.Context(), rc, projectID, key)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newFlagResponse(flag))
}

func (h *FlagHandler) Delete(c *gin.Context) {
	projectID, err := parseProjectID(c)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	key := c.Param("key")

	rc := requestContext(c)
	if err := h.flagService.DeleteFlag(c.Request.Context(), rc, projectID, key); err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type updateFlagValueRequest struct {
	Enabled           *bool `json:"enabled"`
	RolloutPercentage *int  `json:"rollout_percentage"`
}

func (h *FlagHandler) UpdateValue(c *gin.Context) {
	projectID, err := parseProjectID(c)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	key := c.Param("key")
	envName := c.Param("env")

	var req updateFlagValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	rc := requestContext(c)
	flag, err := h.flagService.UpdateFlagValue(c.Request.Context(), rc, projectID, key, envName, req.Enabled, req.RolloutPercentage)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newFlagResponse(flag))
}

func (h *FlagHandler) Toggle(c *gin.Context) {
	projectID, err := parseProjectID(c)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	key := c.Param("key")
	envName := c.Query("environment")
	if envName == "" {
		middleware.RespondError(c, apperr.BadRequest("environment query parameter is required"))
		return
	}

	rc := requestContext(c)
	result, err := h.flagService.ToggleFlagValue(c.Request.Context(), rc, projectID, key, envName)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"key":         result.Key,
		"environment": result.Environment,
		"enabled":     result.Enabled,
	})
}

package handlers

import (
	"net/http"

	"github.com/faiscadev/flaglite/internal/domain"
	"github.com/faiscadev/flaglite/internal/middleware"
	"github.com/faiscadev/flaglite/internal/service"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type signupRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password" binding:"required"`
	ProjectName string `json:"project_name"`
}

type userResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}

func newUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt.UTC().Format(timeFormat)}
}

type environmentResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

func newEnvironmentResponses(envs []domain.Environment) []environmentResponse {
	out := make([]environmentResponse, 0, len(envs))
	for _, e := range envs {
		out = append(out, environmentResponse{ID: e.ID, Name: e.Name, CreatedAt: e.CreatedAt.UTC().Format(timeFormat)})
	}
	return out
}

type projectResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

func newProjectResponse(p *domain.Project) projectResponse {
	return projectResponse{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt.UTC().Format(timeFormat)}
}

type apiKeyResponse struct {
	ID     int64  `json:"id"`
	Key    string `json:"key"`
	Prefix string `json:"prefix"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	result, err := h.authService.Signup(c.Request.Context(), req.Username, req.Password, req.ProjectName)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":         newUserResponse(result.User),
		"token":        result.Token,
		"project":      newProjectResponse(result.Project),
		"environments": newEnvironmentResponses(result.Environments),
		"api_key": apiKeyResponse{
			ID:     result.ApiKey.ID,
			Key:    result.ApiKeyPlaintext,
			Prefix: result.ApiKey.Prefix,
		},
	})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	body := gin.H{"token": result.Token, "user": newUserResponse(result.User)}
	if result.Project != nil {
		body["project"] = newProjectResponse(result.Project)
		body["environments"] = newEnvironmentResponses(result.Environments)
	}
	c.JSON(http.StatusOK, body)
}

func (h *AuthHandler) Me(c *gin.Context) {
	rc := requestContext(c)

	user, err := h.authService.Me(c.Request.Context(), rc)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

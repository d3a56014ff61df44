package handlers

import (
	"net/http"

	"github.com/faiscadev/flaglite/internal/apperr"
	"github.com/faiscadev/flaglite/internal/middleware"
	"github.com/faiscadev/flaglite/internal/service"
	"github.com/gin-gonic/gin"
)

// EvaluationHandler serves the SDK hot path: two indexed reads and one
// hash, never mutating state.
type EvaluationHandler struct {
	evaluationService *service.EvaluationService
}

func NewEvaluationHandler(evaluationService *service.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{evaluationService: evaluationService}
}

type evaluationResponse struct {
	Key     string `json:"key"`
	Enabled bool   `json:"enabled"`
}

// Evaluate answers "is flag K enabled for user U?" An unknown flag responds
// 404 with enabled:false rather than an empty body, so SDKs that only check
// the status code still fail closed.
func (h *EvaluationHandler) Evaluate(c *gin.Context) {
	key := c.Param("key")
	userID := c.Query("user_id")

	rc := requestContext(c)
	result, err := h.evaluationService.Evaluate(c.Request.Context(), rc, key, userID)
	if err != nil {
		if e := apperr.As(err); e.Code == apperr.CodeNotFound {
			c.JSON(http.StatusNotFound, evaluationResponse{Key: key, Enabled: false})
			return
		}
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, evaluationResponse{Key: result.Key, Enabled: result.Enabled})
}

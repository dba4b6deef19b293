package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/skilltrack-backend/internal/http/response"
	"github.com/yungbote/skilltrack-backend/internal/pkg/logger"
	"github.com/yungbote/skilltrack-backend/internal/requestdata"
	"github.com/yungbote/skilltrack-backend/internal/services"
)

type GenerationHandler struct {
	log        *logger.Logger
	generation services.GenerationService
}

func NewGenerationHandler(log *logger.Logger, generation services.GenerationService) *GenerationHandler {
	return &GenerationHandler{log: log.With("handler", "GenerationHandler"), generation: generation}
}

// POST /api/topics/generate
func (h *GenerationHandler) Generate(c *gin.Context) {
	ownerID := requestdata.OwnerID(c.Request.Context())
	if ownerID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var input services.GenerateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	result, err := h.generation.Generate(c.Request.Context(), ownerID, input)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"topics":          result.Topics,
		"remaining_quota": result.RemainingQuota,
	})
}

package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/skilltrack-backend/internal/http/response"
	"github.com/yungbote/skilltrack-backend/internal/pkg/logger"
	"github.com/yungbote/skilltrack-backend/internal/repos"
	"github.com/yungbote/skilltrack-backend/internal/requestdata"
	"github.com/yungbote/skilltrack-backend/internal/services"
	"github.com/yungbote/skilltrack-backend/internal/types"
)

type TopicHandler struct {
	log    *logger.Logger
	topics services.TopicService
}

func NewTopicHandler(log *logger.Logger, topics services.TopicService) *TopicHandler {
	return &TopicHandler{log: log.With("handler", "TopicHandler"), topics: topics}
}

// GET /api/topics
func (h *TopicHandler) List(c *gin.Context) {
	ownerID := requestdata.OwnerID(c.Request.Context())
	if ownerID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var filter repos.TopicFilter
	if v := strings.TrimSpace(c.Query("status")); v != "" {
		status := types.TopicStatus(v)
		filter.Status = &status
	}
	if v := strings.TrimSpace(c.Query("technology")); v != "" {
		filter.Technology = &v
	}
	if v := strings.TrimSpace(c.Query("parent_id")); v != "" {
		parentID, err := uuid.Parse(v)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_parent_id", err)
			return
		}
		filter.ParentID = &parentID
	}
	filter.RootOnly = isTruthy(c.Query("root"))

	sort := repos.TopicSort{
		Field: c.Query("sort"),
		Desc:  !strings.EqualFold(c.Query("order"), "asc"),
	}
	page := repos.Page{
		Number: atoiDefault(c.Query("page"), 1),
		Size:   atoiDefault(c.Query("page_size"), 0),
	}

	list, err := h.topics.List(c.Request.Context(), ownerID, filter, sort, page)
	if err != nil {
		h.log.Error("list topics failed", "owner_id", ownerID, "error", err)
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, list)
}

// GET /api/topics/:id
func (h *TopicHandler) Get(c *gin.Context) {
	ownerID := requestdata.OwnerID(c.Request.Context())
	if ownerID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	topicID, err := uuid.Parse(c.Param("id"))
	if err != nil || topicID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_topic_id", err)
		return
	}
	topic, err := h.topics.GetByID(c.Request.Context(), ownerID, topicID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"topic": topic})
}

// GET /api/topics/:id/children
func (h *TopicHandler) Children(c *gin.Context) {
	ownerID := requestdata.OwnerID(c.Request.Context())
	if ownerID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	topicID, err := uuid.Parse(c.Param("id"))
	if err != nil || topicID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_topic_id", err)
		return
	}
	children, err := h.topics.GetChildren(c.Request.Context(), ownerID, topicID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"children": children})
}

// POST /api/topics
func (h *TopicHandler) Create(c *gin.Context) {
	ownerID := requestdata.OwnerID(c.Request.Context())
	if ownerID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var input services.CreateTopicInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	topic, err := h.topics.Create(c.Request.Context(), ownerID, input)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"topic": topic})
}

// PATCH /api/topics/:id
func (h *TopicHandler) Update(c *gin.Context) {
	ownerID := requestdata.OwnerID(c.Request.Context())
	if ownerID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	topicID, err := uuid.Parse(c.Param("id"))
	if err != nil || topicID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_topic_id", err)
		return
	}
	var patch services.TopicPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	topic, err := h.topics.Update(c.Request.Context(), ownerID, topicID, patch)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"topic": topic})
}

// PATCH /api/topics/:id/status
func (h *TopicHandler) UpdateStatus(c *gin.Context) {
	ownerID := requestdata.OwnerID(c.Request.Context())
	if ownerID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	topicID, err := uuid.Parse(c.Param("id"))
	if err != nil || topicID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_topic_id", err)
		return
	}
	var body struct {
		Status types.TopicStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	topic, err := h.topics.UpdateStatus(c.Request.Context(), ownerID, topicID, body.Status)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"topic": topic})
}

// DELETE /api/topics/:id
func (h *TopicHandler) Delete(c *gin.Context) {
	ownerID := requestdata.OwnerID(c.Request.Context())
	if ownerID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	topicID, err := uuid.Parse(c.Param("id"))
	if err != nil || topicID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_topic_id", err)
		return
	}
	if err := h.topics.Delete(c.Request.Context(), ownerID, topicID); err != nil {
		response.RespondAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

func atoiDefault(v string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

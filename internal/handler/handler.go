// Package handler exposes the session over HTTP for the browser client.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"quest-forge/internal/export"
	"quest-forge/internal/model"
	"quest-forge/internal/session"
	"quest-forge/internal/world"
)

// APIError is the standardized error response body.
type APIError struct {
	Message string `json:"message"`
}

// QuestHandler wires the session state machine to the HTTP routes.
type QuestHandler struct {
	session *session.Session
	world   *world.Data
	logger  *zap.Logger
}

// NewQuestHandler creates a QuestHandler.
func NewQuestHandler(s *session.Session, w *world.Data, logger *zap.Logger) *QuestHandler {
	return &QuestHandler{
		session: s,
		world:   w,
		logger:  logger.Named("QuestHandler"),
	}
}

// RegisterRoutes registers the API routes on the router.
func (h *QuestHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)

	api := r.Group("/api")
	{
		api.GET("/world", h.getWorld)

		sess := api.Group("/session")
		{
			sess.GET("", h.getSession)
			sess.POST("/generate", h.generate)
			sess.POST("/accept", h.acceptQuest)
			sess.POST("/reset", h.resetCampaign)
			sess.PATCH("/config", h.updateConfig)
			sess.GET("/export/quest", h.exportQuest)
			sess.GET("/export/campaign", h.exportCampaign)
		}
	}
}

func (h *QuestHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// getWorld returns the static lore dataset the client renders its selectors
// from.
func (h *QuestHandler) getWorld(c *gin.Context) {
	c.JSON(http.StatusOK, h.world)
}

func (h *QuestHandler) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Snapshot())
}

// generate runs one generation attempt and returns the resulting snapshot.
// Provider and parse failures are part of the snapshot, not HTTP errors;
// only a second generation started while one is in flight is rejected.
func (h *QuestHandler) generate(c *gin.Context) {
	if err := h.session.Generate(c.Request.Context()); err != nil {
		h.handleSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.Snapshot())
}

func (h *QuestHandler) acceptQuest(c *gin.Context) {
	if err := h.session.AcceptQuest(); err != nil {
		h.handleSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.Snapshot())
}

func (h *QuestHandler) resetCampaign(c *gin.Context) {
	h.session.ResetCampaign()
	c.JSON(http.StatusOK, h.session.Snapshot())
}

func (h *QuestHandler) updateConfig(c *gin.Context) {
	var upd session.ConfigUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "Invalid request body: " + err.Error()})
		return
	}

	if err := h.session.UpdateConfig(upd); err != nil {
		h.handleSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.Snapshot())
}

// exportQuest downloads the current quest as a JSON document.
func (h *QuestHandler) exportQuest(c *gin.Context) {
	quest, ok := h.session.CurrentQuest()
	if !ok {
		h.handleSessionError(c, model.ErrNoActiveQuest)
		return
	}

	payload, err := export.QuestDocument(quest)
	if err != nil {
		h.logger.Error("Failed to encode quest export", zap.Error(err))
		c.JSON(http.StatusInternalServerError, APIError{Message: "Internal server error"})
		return
	}

	writeDownload(c, export.QuestFilename(quest.Title), payload)
}

// exportCampaign downloads the campaign timeline as a JSON document.
func (h *QuestHandler) exportCampaign(c *gin.Context) {
	campaign := h.session.Campaign()

	payload, err := export.CampaignDocument(campaign)
	if err != nil {
		h.logger.Error("Failed to encode campaign export", zap.Error(err))
		c.JSON(http.StatusInternalServerError, APIError{Message: "Internal server error"})
		return
	}

	writeDownload(c, export.CampaignFilename(), payload)
}

func writeDownload(c *gin.Context, filename string, payload []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

func (h *QuestHandler) handleSessionError(c *gin.Context, err error) {
	var statusCode int
	switch {
	case errors.Is(err, model.ErrGenerationInProgress):
		statusCode = http.StatusConflict
	case errors.Is(err, model.ErrNoActiveQuest):
		statusCode = http.StatusConflict
	case errors.Is(err, model.ErrInvalidInput):
		statusCode = http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		statusCode = http.StatusNotFound
	default:
		h.logger.Error("Unhandled session error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, APIError{Message: "Internal server error"})
		return
	}
	c.JSON(statusCode, APIError{Message: err.Error()})
}

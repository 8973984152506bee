package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Harshul8824/BIM/internal/model"
	"github.com/Harshul8824/BIM/internal/service"
	"github.com/Harshul8824/BIM/pkg/logger"
)

type ProgressHandler struct {
	progress *service.ProgressService
	logger   *zap.Logger
}

func NewProgressHandler(progress *service.ProgressService, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{progress: progress, logger: logger}
}

func (h *ProgressHandler) log(c *gin.Context) *zap.Logger {
	return logger.WithTrace(c.Request.Context(), h.logger)
}

func (h *ProgressHandler) CreateProgress(c *gin.Context) {
	log := h.log(c)
	log.Info("CreateProgress request received", zap.String("client_ip", c.ClientIP()))

	var in model.ProgressInput
	if err := c.ShouldBindJSON(&in); err != nil {
		log.Warn("CreateProgress: invalid request body", zap.Error(err))
		badBody(c)
		return
	}

	p, err := h.progress.Create(c.Request.Context(), in.Document())
	if err != nil {
		writeError(c, log, "CreateProgress", err)
		return
	}

	log.Info("CreateProgress: success", zap.String("progress_id", p.ID), zap.String("project_id", p.Project))
	ok(c, http.StatusCreated, p)
}

func (h *ProgressHandler) ListProgress(c *gin.Context) {
	entries, err := h.progress.List(c.Request.Context())
	if err != nil {
		writeError(c, h.log(c), "ListProgress", err)
		return
	}
	okList(c, entries)
}

// ListProjectProgress GET /progress/project/:projectId
func (h *ProgressHandler) ListProjectProgress(c *gin.Context) {
	projectID := c.Param("projectId")
	log := h.log(c).With(zap.String("project_id", projectID))

	entries, err := h.progress.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		writeError(c, log, "ListProjectProgress", err)
		return
	}

	log.Info("ListProjectProgress: success", zap.Int("entry_count", len(entries)))
	okList(c, entries)
}

func (h *ProgressHandler) GetProgress(c *gin.Context) {
	id := c.Param("id")
	p, err := h.progress.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log(c).With(zap.String("progress_id", id)), "GetProgress", err)
		return
	}
	ok(c, http.StatusOK, p)
}

func (h *ProgressHandler) UpdateProgress(c *gin.Context) {
	id := c.Param("id")
	log := h.log(c).With(zap.String("progress_id", id))
	log.Info("UpdateProgress request received", zap.String("client_ip", c.ClientIP()))

	var in model.ProgressInput
	if err := c.ShouldBindJSON(&in); err != nil {
		log.Warn("UpdateProgress: invalid request body", zap.Error(err))
		badBody(c)
		return
	}

	patch := in.Document()
	p, err := h.progress.Update(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, log, "UpdateProgress", err)
		return
	}

	log.Info("UpdateProgress: success", zap.Strings("fields", patch.Keys()))
	ok(c, http.StatusOK, p)
}

func (h *ProgressHandler) DeleteProgress(c *gin.Context) {
	id := c.Param("id")
	log := h.log(c).With(zap.String("progress_id", id))

	if err := h.progress.Delete(c.Request.Context(), id); err != nil {
		writeError(c, log, "DeleteProgress", err)
		return
	}

	log.Info("DeleteProgress: success")
	c.Status(http.StatusNoContent)
}

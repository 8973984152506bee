package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Harshul8824/BIM/internal/model"
	"github.com/Harshul8824/BIM/internal/service"
	"github.com/Harshul8824/BIM/pkg/logger"
)

type ProjectHandler struct {
	projects *service.ProjectService
	logger   *zap.Logger
}

func NewProjectHandler(projects *service.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, logger: logger}
}

func (h *ProjectHandler) log(c *gin.Context) *zap.Logger {
	return logger.WithTrace(c.Request.Context(), h.logger)
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	log := h.log(c)
	log.Info("CreateProject request received", zap.String("client_ip", c.ClientIP()))

	var in model.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		log.Warn("CreateProject: invalid request body", zap.Error(err))
		badBody(c)
		return
	}
	doc, err := in.Document()
	if err != nil {
		log.Warn("CreateProject: invalid plannedMaterial", zap.Error(err))
		badBody(c)
		return
	}

	p, err := h.projects.Create(c.Request.Context(), doc)
	if err != nil {
		writeError(c, log, "CreateProject", err)
		return
	}

	log.Info("CreateProject: success", zap.String("project_id", p.ID))
	ok(c, http.StatusCreated, p)
}

func (h *ProjectHandler) ListProjects(c *gin.Context) {
	projects, err := h.projects.List(c.Request.Context())
	if err != nil {
		writeError(c, h.log(c), "ListProjects", err)
		return
	}
	okList(c, projects)
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	id := c.Param("id")
	p, err := h.projects.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log(c).With(zap.String("project_id", id)), "GetProject", err)
		return
	}
	ok(c, http.StatusOK, p)
}

func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id := c.Param("id")
	log := h.log(c).With(zap.String("project_id", id))
	log.Info("UpdateProject request received", zap.String("client_ip", c.ClientIP()))

	var in model.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		log.Warn("UpdateProject: invalid request body", zap.Error(err))
		badBody(c)
		return
	}
	patch, err := in.Document()
	if err != nil {
		log.Warn("UpdateProject: invalid plannedMaterial", zap.Error(err))
		badBody(c)
		return
	}

	p, err := h.projects.Update(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, log, "UpdateProject", err)
		return
	}

	log.Info("UpdateProject: success", zap.Strings("fields", patch.Keys()))
	ok(c, http.StatusOK, p)
}

func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id := c.Param("id")
	log := h.log(c).With(zap.String("project_id", id))

	if err := h.projects.Delete(c.Request.Context(), id); err != nil {
		writeError(c, log, "DeleteProject", err)
		return
	}

	log.Info("DeleteProject: success")
	c.Status(http.StatusNoContent)
}

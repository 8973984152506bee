package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Harshul8824/BIM/internal/model"
	"github.com/Harshul8824/BIM/internal/service"
	"github.com/Harshul8824/BIM/pkg/logger"
)

type UserHandler struct {
	users    *service.UserService
	requests *service.ManagerRequestService
	logger   *zap.Logger
}

func NewUserHandler(users *service.UserService, requests *service.ManagerRequestService, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, requests: requests, logger: logger}
}

func (h *UserHandler) log(c *gin.Context) *zap.Logger {
	return logger.WithTrace(c.Request.Context(), h.logger)
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	log := h.log(c)
	log.Info("CreateUser request received", zap.String("client_ip", c.ClientIP()))

	var in model.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		log.Warn("CreateUser: invalid request body", zap.Error(err))
		badBody(c)
		return
	}

	u, err := h.users.Create(c.Request.Context(), in.Document())
	if err != nil {
		writeError(c, log, "CreateUser", err)
		return
	}

	log.Info("CreateUser: success", zap.String("user_id", u.ID))
	ok(c, http.StatusCreated, u)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		writeError(c, h.log(c), "ListUsers", err)
		return
	}
	okList(c, users)
}

// ListManagers GET /users/managers
func (h *UserHandler) ListManagers(c *gin.Context) {
	managers, err := h.users.ListManagers(c.Request.Context())
	if err != nil {
		writeError(c, h.log(c), "ListManagers", err)
		return
	}
	okList(c, managers)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id := c.Param("id")
	u, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log(c).With(zap.String("user_id", id)), "GetUser", err)
		return
	}
	ok(c, http.StatusOK, u)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id := c.Param("id")
	log := h.log(c).With(zap.String("user_id", id))
	log.Info("UpdateUser request received", zap.String("client_ip", c.ClientIP()))

	var in model.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		log.Warn("UpdateUser: invalid request body", zap.Error(err))
		badBody(c)
		return
	}

	patch := in.Document()
	u, err := h.users.Update(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, log, "UpdateUser", err)
		return
	}

	log.Info("UpdateUser: success", zap.Strings("fields", patch.Keys()))
	ok(c, http.StatusOK, u)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	log := h.log(c).With(zap.String("user_id", id))

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		writeError(c, log, "DeleteUser", err)
		return
	}

	log.Info("DeleteUser: success")
	c.Status(http.StatusNoContent)
}

type addClientRequest struct {
	Client string `json:"client"`
}

// AddClient POST /users/:id/clients
func (h *UserHandler) AddClient(c *gin.Context) {
	managerID := c.Param("id")
	log := h.log(c).With(zap.String("manager_id", managerID))
	log.Info("AddClient request received", zap.String("client_ip", c.ClientIP()))

	var req addClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("AddClient: invalid request body", zap.Error(err))
		badBody(c)
		return
	}

	u, err := h.users.AddClient(c.Request.Context(), managerID, req.Client)
	if err != nil {
		writeError(c, log, "AddClient", err)
		return
	}

	log.Info("AddClient: success", zap.String("client_id", req.Client), zap.Int("client_count", len(u.Clients)))
	ok(c, http.StatusOK, u)
}

// SendManagerRequest POST /users/req
func (h *UserHandler) SendManagerRequest(c *gin.Context) {
	log := h.log(c)
	log.Info("SendManagerRequest request received", zap.String("client_ip", c.ClientIP()))

	var req service.ManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("SendManagerRequest: invalid request body", zap.Error(err))
		badBody(c)
		return
	}
	log = log.With(zap.String("client_id", req.ClientID), zap.String("manager_id", req.ManagerID))

	if err := h.requests.Send(c.Request.Context(), req); err != nil {
		writeError(c, log, "SendManagerRequest", err)
		return
	}

	log.Info("SendManagerRequest: success")
	okMessage(c, "Message sent to project manager successfully")
}

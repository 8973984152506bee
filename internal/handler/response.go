// Package handler exposes the services over HTTP with gin.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Harshul8824/BIM/internal/apperr"
	"github.com/Harshul8824/BIM/pkg/rbac"
)

// 响应状态
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// Envelope 所有接口统一的响应结构
type Envelope struct {
	Status  string   `json:"status"`
	Message string   `json:"message,omitempty"`
	Data    any      `json:"data,omitempty"`
	Length  *int     `json:"length,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func ok(c *gin.Context, code int, data any) {
	c.JSON(code, Envelope{Status: StatusSuccess, Data: data})
}

func okList[T any](c *gin.Context, items []T) {
	n := len(items)
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, Envelope{Status: StatusSuccess, Length: &n, Data: items})
}

func okMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Envelope{Status: StatusSuccess, Message: message})
}

func fail(c *gin.Context, code int, message string, errs ...string) {
	status := StatusFail
	if code >= http.StatusInternalServerError {
		status = StatusError
	}
	c.JSON(code, Envelope{Status: status, Message: message, Errors: errs})
}

func badBody(c *gin.Context) {
	fail(c, http.StatusBadRequest, "Invalid request body")
}

// classify 把领域错误映射为 HTTP 状态码和提示信息
func classify(err error) (int, string, []string) {
	var (
		ve  *apperr.ValidationError
		dup *apperr.DuplicateKeyError
		mf  *apperr.MissingFieldError
		nf  *apperr.NotFoundError
		rv  *rbac.RoleViolationError
		te  *apperr.TransportError
	)

	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, "Validation Error", ve.Messages()
	case errors.As(err, &dup):
		return http.StatusBadRequest, dup.Error(), nil
	case errors.Is(err, apperr.ErrInvalidID):
		return http.StatusBadRequest, "Invalid ID format", nil
	case errors.As(err, &mf):
		return http.StatusBadRequest, mf.Error(), nil
	case errors.As(err, &rv):
		return http.StatusForbidden, rv.Error(), nil
	case errors.As(err, &nf):
		return http.StatusNotFound, nf.Entity + " not found", nil
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, "Resource not found", nil
	case errors.Is(err, apperr.ErrDuplicateRequest):
		return http.StatusConflict, "Message already sent to this manager, try again later", nil
	case errors.As(err, &te):
		return http.StatusBadGateway, "Can't send mail", nil
	default:
		return http.StatusInternalServerError, "Something went wrong!", nil
	}
}

// writeError 4xx 记 Warn，5xx 记 Error 并带上原始错误
func writeError(c *gin.Context, log *zap.Logger, op string, err error) {
	code, message, errs := classify(err)
	if code >= http.StatusInternalServerError {
		log.Error(op+": failed", zap.Int("status", code), zap.Error(err))
	} else {
		log.Warn(op+": rejected", zap.Int("status", code), zap.Error(err))
	}
	fail(c, code, message, errs...)
}

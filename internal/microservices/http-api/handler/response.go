package handler

import (
	"errors"
	"net/http"
	"strconv"

	"djrating/internal/microservices/http-api/dto"
	"djrating/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, dto.Envelope{Success: true, Data: data})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, dto.Envelope{Success: true, Message: message})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.Envelope{
		Message: message,
		Code:    service.ErrValidation.Code,
	})
}

var kindStatus = map[service.ErrorKind]int{
	service.KindValidation:   http.StatusBadRequest,
	service.KindNotFound:     http.StatusNotFound,
	service.KindConflict:     http.StatusConflict,
	service.KindUnauthorized: http.StatusUnauthorized,
	service.KindForbidden:    http.StatusForbidden,
}

// respondError maps a service error to its status code. Unknown errors are
// attached to the context for the request logger and answered generically.
func respondError(c *gin.Context, err error) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		if status, ok := kindStatus[svcErr.Kind]; ok {
			c.JSON(status, dto.Envelope{Message: svcErr.Message, Code: svcErr.Code})
			return
		}
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, dto.Envelope{
		Message: "internal server error",
		Code:    "INTERNAL",
	})
}

// currentUserID reads the id set by AuthMiddleware.
func currentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, dto.Envelope{
			Message: "user not authenticated",
			Code:    service.ErrInvalidToken.Code,
		})
		return "", false
	}
	return userID, true
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondBadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

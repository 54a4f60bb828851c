package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/wastewise/binreminder/internal/middleware"
	"github.com/wastewise/binreminder/internal/pkg/errcode"
	appErr "github.com/wastewise/binreminder/internal/pkg/errors"
	"github.com/wastewise/binreminder/internal/pkg/response"
)

func getUserID(c *gin.Context) string {
	value, _ := c.Get(middleware.ContextUserIDKey)
	userID, _ := value.(string)
	return userID
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Warn("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("user_id", getUserID(c)),
		zap.Error(err),
	)
	var rateLimited *appErr.RateLimitError
	switch {
	case errors.As(err, &rateLimited):
		c.Header("Retry-After", strconv.FormatInt(rateLimited.SecondsLeft, 10))
		response.Error(c, errcode.ErrTooMany, rateLimited.Error())
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, errcode.ErrUnauthorized, "unauthorized")
	case errors.Is(err, appErr.ErrForbidden):
		response.Error(c, errcode.ErrForbidden, "forbidden")
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, errcode.ErrNotFound, "not found")
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, "invalid request")
	case errors.Is(err, appErr.ErrConflict):
		response.Error(c, errcode.ErrConflict, "conflict")
	case errors.Is(err, appErr.ErrTooMany):
		response.Error(c, errcode.ErrTooMany, "too many requests")
	case errors.Is(err, appErr.ErrCodeLocked):
		response.Error(c, errcode.ErrCodeLocked, "code locked after too many attempts")
	case errors.Is(err, appErr.ErrCodeInvalid):
		response.Error(c, errcode.ErrCodeInvalid, "code invalid or expired")
	case errors.Is(err, appErr.ErrHolidayData):
		response.Error(c, errcode.ErrHolidayData, "holiday data error")
	case errors.Is(err, appErr.ErrDelivery):
		response.Error(c, errcode.ErrDelivery, "delivery failed")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}

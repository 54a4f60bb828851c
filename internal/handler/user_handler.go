package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/wastewise/binreminder/internal/pkg/errcode"
	"github.com/wastewise/binreminder/internal/pkg/response"
	"github.com/wastewise/binreminder/internal/service"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Profile(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, user)
}

type editProfileRequest struct {
	FullName string `json:"full_name"`
	Country  string `json:"country"`
}

func (h *UserHandler) EditProfile(c *gin.Context) {
	var req editProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request body")
		return
	}
	user, err := h.users.EditProfile(c.Request.Context(), getUserID(c), req.FullName, req.Country)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, user)
}

type deviceTokenRequest struct {
	DeviceToken string `json:"device_token"`
}

func (h *UserHandler) RegisterDeviceToken(c *gin.Context) {
	var req deviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request body")
		return
	}
	if err := h.users.RegisterDeviceToken(c.Request.Context(), getUserID(c), req.DeviceToken); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *UserHandler) AdminList(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, users)
}

func (h *UserHandler) AdminUpdate(c *gin.Context) {
	var req service.AdminUpdateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request body")
		return
	}
	user, err := h.users.AdminUpdate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, user)
}

func (h *UserHandler) AdminDelete(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}

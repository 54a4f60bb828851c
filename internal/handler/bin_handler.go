package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wastewise/binreminder/internal/model"
	"github.com/wastewise/binreminder/internal/pkg/errcode"
	"github.com/wastewise/binreminder/internal/pkg/response"
	"github.com/wastewise/binreminder/internal/service"
)

type BinHandler struct {
	bins  *service.BinService
	users *service.UserService
}

func NewBinHandler(bins *service.BinService, users *service.UserService) *BinHandler {
	return &BinHandler{bins: bins, users: users}
}

func (h *BinHandler) owner(c *gin.Context) (*model.User, error) {
	return h.users.Get(c.Request.Context(), getUserID(c))
}

func (h *BinHandler) Add(c *gin.Context) {
	var req service.AddBinInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request body")
		return
	}
	user, err := h.owner(c)
	if err != nil {
		handleError(c, err)
		return
	}
	bin, err := h.bins.AddBin(c.Request.Context(), user, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, bin)
}

func (h *BinHandler) List(c *gin.Context) {
	bins, err := h.bins.List(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, bins)
}

type updateScheduleRequest struct {
	LastCollectionDate string `json:"last_collection_date"`
	CollectionInterval int    `json:"collection_interval"`
}

func (h *BinHandler) UpdateSchedule(c *gin.Context) {
	var req updateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request body")
		return
	}
	user, err := h.owner(c)
	if err != nil {
		handleError(c, err)
		return
	}
	bin, err := h.bins.UpdateSchedule(c.Request.Context(), user, c.Param("id"), req.LastCollectionDate, req.CollectionInterval)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, bin)
}

type updateAppearanceRequest struct {
	BodyColor string `json:"body_color"`
	HeadColor string `json:"head_color"`
}

func (h *BinHandler) UpdateAppearance(c *gin.Context) {
	var req updateAppearanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request body")
		return
	}
	bin, err := h.bins.UpdateAppearance(c.Request.Context(), getUserID(c), c.Param("id"), req.BodyColor, req.HeadColor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, bin)
}

type notificationsRequest struct {
	Enabled *bool `json:"enabled"`
}

func (h *BinHandler) SetNotifications(c *gin.Context) {
	var req notificationsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Enabled == nil {
		response.Error(c, errcode.ErrInvalid, "invalid request body")
		return
	}
	if err := h.bins.SetNotificationsEnabled(c.Request.Context(), getUserID(c), c.Param("id"), *req.Enabled); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *BinHandler) Upcoming(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	upcoming, err := h.bins.Upcoming(c.Request.Context(), getUserID(c), days)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, upcoming)
}

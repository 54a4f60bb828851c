package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/wastewise/binreminder/internal/pkg/errcode"
	"github.com/wastewise/binreminder/internal/pkg/response"
	"github.com/wastewise/binreminder/internal/service"
)

type CountryHandler struct {
	holidays *service.HolidayService
}

func NewCountryHandler(holidays *service.HolidayService) *CountryHandler {
	return &CountryHandler{holidays: holidays}
}

func (h *CountryHandler) List(c *gin.Context) {
	countries, err := h.holidays.ListCountries(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, countries)
}

type addCountryRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func (h *CountryHandler) Add(c *gin.Context) {
	var req addCountryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request body")
		return
	}
	country, err := h.holidays.AddCountry(c.Request.Context(), req.Code, req.Name)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, country)
}

type setCountryActiveRequest struct {
	Active *bool `json:"active"`
}

func (h *CountryHandler) SetActive(c *gin.Context) {
	var req setCountryActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		response.Error(c, errcode.ErrInvalid, "invalid request body")
		return
	}
	if err := h.holidays.SetCountryActive(c.Request.Context(), c.Param("code"), *req.Active); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *CountryHandler) ListHolidays(c *gin.Context) {
	holidays, err := h.holidays.ListHolidays(c.Request.Context(), c.Param("code"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, holidays)
}

func (h *CountryHandler) AddHoliday(c *gin.Context) {
	var req service.HolidayInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request body")
		return
	}
	holiday, err := h.holidays.AddHoliday(c.Request.Context(), c.Param("code"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, holiday)
}

type bulkHolidaysRequest struct {
	Holidays []service.HolidayInput `json:"holidays"`
}

func (h *CountryHandler) AddHolidays(c *gin.Context) {
	var req bulkHolidaysRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Holidays) == 0 {
		response.Error(c, errcode.ErrInvalid, "invalid request body")
		return
	}
	added, err := h.holidays.AddHolidays(c.Request.Context(), c.Param("code"), req.Holidays)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, added)
}

func (h *CountryHandler) UpdateHoliday(c *gin.Context) {
	var req service.HolidayInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request body")
		return
	}
	holiday, err := h.holidays.UpdateHoliday(c.Request.Context(), c.Param("code"), c.Param("id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, holiday)
}

func (h *CountryHandler) DeleteHoliday(c *gin.Context) {
	if err := h.holidays.DeleteHoliday(c.Request.Context(), c.Param("code"), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}

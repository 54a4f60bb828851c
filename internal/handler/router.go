package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wastewise/binreminder/internal/middleware"
)

type RouterDeps struct {
	Auth           *AuthHandler
	Bins           *BinHandler
	Users          *UserHandler
	Countries      *CountryHandler
	JWTSecret      []byte
	AuthRateWindow time.Duration
	CodeRateWindow time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	// Credential and code endpoints sit behind a per-client window to
	// blunt guessing and email flooding.
	authLimited := api.Group("")
	authLimited.Use(middleware.RateLimit(deps.AuthRateWindow))
	authLimited.POST("/auth/register", deps.Auth.Register)
	authLimited.POST("/auth/login", deps.Auth.Login)
	authLimited.POST("/auth/forgot-password", deps.Auth.ForgotPassword)
	authLimited.POST("/auth/reset-password", deps.Auth.ResetPassword)

	api.POST("/auth/refresh", deps.Auth.Refresh)
	api.POST("/auth/logout", deps.Auth.Logout)
	api.GET("/countries", deps.Countries.List)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))

	codeLimited := authGroup.Group("")
	codeLimited.Use(middleware.RateLimit(deps.CodeRateWindow))
	codeLimited.POST("/auth/verify-email", deps.Auth.VerifyEmail)
	codeLimited.POST("/auth/resend-code", deps.Auth.ResendVerification)

	authGroup.GET("/users/me", deps.Users.Profile)
	authGroup.PUT("/users/me", deps.Users.EditProfile)
	authGroup.PUT("/users/me/device-token", deps.Users.RegisterDeviceToken)

	authGroup.POST("/bins", deps.Bins.Add)
	authGroup.GET("/bins", deps.Bins.List)
	authGroup.GET("/bins/upcoming", deps.Bins.Upcoming)
	authGroup.PUT("/bins/:id/schedule", deps.Bins.UpdateSchedule)
	authGroup.PUT("/bins/:id/appearance", deps.Bins.UpdateAppearance)
	authGroup.PUT("/bins/:id/notifications", deps.Bins.SetNotifications)

	authGroup.GET("/countries/:code/holidays", deps.Countries.ListHolidays)

	adminGroup := authGroup.Group("")
	adminGroup.Use(middleware.AdminOnly())
	adminGroup.GET("/admin/users", deps.Users.AdminList)
	adminGroup.PUT("/admin/users/:id", deps.Users.AdminUpdate)
	adminGroup.DELETE("/admin/users/:id", deps.Users.AdminDelete)

	adminGroup.POST("/admin/countries", deps.Countries.Add)
	adminGroup.PUT("/admin/countries/:code/active", deps.Countries.SetActive)
	adminGroup.POST("/admin/countries/:code/holidays", deps.Countries.AddHoliday)
	adminGroup.POST("/admin/countries/:code/holidays/batch", deps.Countries.AddHolidays)
	adminGroup.PUT("/admin/countries/:code/holidays/:id", deps.Countries.UpdateHoliday)
	adminGroup.DELETE("/admin/countries/:code/holidays/:id", deps.Countries.DeleteHoliday)
}

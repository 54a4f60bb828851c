package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/wastewise/binreminder/internal/pkg/errcode"
	"github.com/wastewise/binreminder/internal/pkg/response"
)

// AdminOnly must run after JWTAuth.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, _ := c.Get(ContextIsAdminKey)
		isAdmin, _ := value.(bool)
		if !isAdmin {
			response.Error(c, errcode.ErrForbidden, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

package middleware

import (
	"matchday/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// AdminOnly checks the account role from the database on each request
func AdminOnly(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, ok := AccountID(c)
		if !ok {
			abort(c, domain.ErrUnauthorized("missing session"))
			return
		}
		var acc domain.Account
		// Role is read fresh so a demotion takes effect before the token expires
		if err := db.WithContext(c.Request.Context()).Select("id", "role").First(&acc, accountID).Error; err != nil || acc.Role != domain.RoleAdmin {
			abort(c, domain.ErrForbidden("ADMIN_REQUIRED", "admin access required"))
			return
		}
		c.Next()
	}
}

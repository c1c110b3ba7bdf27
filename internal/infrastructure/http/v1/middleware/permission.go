package middleware

import (
	"slices"

	"github.com/gin-gonic/gin"

	"docflow/internal/core/apperror"
	appctx "docflow/internal/core/context"
	"docflow/internal/domain/auth"
)

// RequirePermission middleware checks if user has required permission.
// Admins automatically have all permissions.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := appctx.GetUser(c.Request.Context())
		if user == nil {
			abortUnauthorized(c, "authentication required")
			return
		}

		if auth.IsAdmin(user.Roles) || slices.Contains(getUserPermissions(c), permission) {
			c.Next()
			return
		}

		_ = c.Error(
			apperror.NewForbidden("insufficient permissions").
				WithDetail("required_permission", permission),
		)
		c.Abort()
	}
}

// getUserPermissions extracts permissions from context.
// Permissions are stored in the gin context by the Auth middleware.
func getUserPermissions(c *gin.Context) []string {
	if perms, exists := c.Get("permissions"); exists {
		if p, ok := perms.([]string); ok {
			return p
		}
	}
	return nil
}

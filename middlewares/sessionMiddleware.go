package middlewares

import (
	"net/http"

	"bitbucket.org/sahelfocus/loadtrack_backend/config"
	"bitbucket.org/sahelfocus/loadtrack_backend/models"
	"bitbucket.org/sahelfocus/loadtrack_backend/utils"
	"github.com/gin-gonic/gin"
)

// SessionMiddleware resolves the auth collaborator's session token into a
// request-scoped operator identity: role and platform assignment travel in the
// context, never in package globals.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Request.Header.Get("token")
		if token == "" {
			c.Next()
			return
		}
		username, exists, err := config.GetRedisValue("Token:" + token)
		if err != nil || !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		operator, err := models.GetOperatorByUsername(c.Request.Context(), username)
		if err != nil || operator.IsActive == nil || !*operator.IsActive {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := utils.SetTokenInContext(c.Request.Context(), token)
		ctx = utils.SetUsernameInContext(ctx, operator.Username)
		ctx = utils.SetOperatorIdInContext(ctx, operator.ID)
		ctx = utils.SetOperatorNameInContext(ctx, operator.Name)
		ctx = utils.SetRoleInContext(ctx, string(operator.Role))
		ctx = utils.SetPlatformInContext(ctx, string(operator.PlatformAssignment))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

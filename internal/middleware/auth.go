package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/auth"
	"github.com/taskhive-dev/taskhive/internal/services"
	"github.com/taskhive-dev/taskhive/internal/types"
)

type AuthenticatedUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func AuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		tokenString := ""

		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)

			if len(parts) != 2 || parts[0] != "Bearer" {
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, types.Error("UNAUTHENTICATED", "Authorization header format must be Bearer {token}", nil))
				return
			}

			tokenString = parts[1]
		} else {
			// Browsers cannot set headers on websocket handshakes.
			tokenString = ctx.Query("token")
		}

		if tokenString == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, types.Error("UNAUTHENTICATED", "Authorization token is required", nil))
			return
		}

		identity, err := auth.DecodeToken(tokenString)

		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, types.Error("UNAUTHENTICATED", "Invalid or expired token", nil))
			return
		}

		user, err := services.FindOrCreateUser(db.DB, identity)

		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, types.Error("UNAUTHENTICATED", "Unable to resolve user", nil))
			return
		}

		if !user.IsActive {
			ctx.AbortWithStatusJSON(http.StatusForbidden, types.Error("PERMISSION_DENIED", "Account is deactivated", nil))
			return
		}

		ctx.Set(types.ContextUserKey, AuthenticatedUser{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		})
		ctx.Next()
	}
}

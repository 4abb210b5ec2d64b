package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/auth"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/services"
	"github.com/taskhive-dev/taskhive/internal/types"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

type UserSummary struct {
	ID         uint      `json:"id"`
	ExternalID string    `json:"external_id"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

func newUserSummary(user models.User) UserSummary {
	return UserSummary{
		ID:         user.ID,
		ExternalID: user.ExternalID,
		Email:      user.Email,
		Username:   user.Username,
		IsActive:   user.IsActive,
		CreatedAt:  user.CreatedAt,
	}
}

func Me(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondUnauthenticated(ctx)
		return
	}

	user, err := services.GetUser(db.DB, userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.Success("User retrieved successfully", gin.H{
		"user": newUserSummary(*user),
	}))
}

// SyncProfile re-reads the claims of the presented token and writes any
// changed email or username back to the local row. The middleware already
// proved the token decodes, so a failure here means it vanished mid-request.
func SyncProfile(ctx *gin.Context) {
	tokenString := bearerToken(ctx)

	if tokenString == "" {
		respondUnauthenticated(ctx)
		return
	}

	identity, err := auth.DecodeToken(tokenString)

	if err != nil {
		respondUnauthenticated(ctx)
		return
	}

	user, err := services.SyncUser(db.DB, identity)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.Success("Profile synced successfully", gin.H{
		"user": newUserSummary(*user),
	}))
}

func DeleteAccount(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondUnauthenticated(ctx)
		return
	}

	if err := services.DeleteUser(db.DB, userID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.Success("Account deleted successfully", nil))
}

func bearerToken(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")

	if header == "" {
		return ctx.Query("token")
	}

	parts := strings.SplitN(header, " ", 2)

	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}

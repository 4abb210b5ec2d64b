package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/taskhive-dev/taskhive/internal/ai"
	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/config"
	"github.com/taskhive-dev/taskhive/internal/types"
)

// Cfg and AI are wired once from main before the router starts.
var (
	Cfg *config.Config
	AI  *ai.Service
)

func Configure(cfg *config.Config, aiSvc *ai.Service) {
	Cfg = cfg
	AI = aiSvc
}

func aiState() string {
	if AI != nil && AI.Enabled() {
		return "enabled"
	}

	return "disabled"
}

// respondError maps any service error onto the response envelope. Unknown
// errors become 500s and are logged with their request line; AppErrors pass
// through with their own status, code and details.
func respondError(ctx *gin.Context, err error) {
	appErr := apperrors.As(err)

	if appErr.Status == http.StatusInternalServerError {
		log.Printf("%s %s failed: %v", ctx.Request.Method, ctx.Request.URL.Path, err)
	}

	if appErr.RetryAfter > 0 {
		ctx.Header("Retry-After", strconv.Itoa(appErr.RetryAfter))
	}

	ctx.JSON(appErr.Status, types.Error(appErr.Code, appErr.Message, appErr.Details))
}

func respondInvalid(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, types.Error("VALIDATION_ERROR", "Invalid request", map[string]interface{}{
		"reason": err.Error(),
	}))
}

func respondUnauthenticated(ctx *gin.Context) {
	ctx.JSON(http.StatusUnauthorized, types.Error("UNAUTHENTICATED", "User not authenticated", nil))
}

// pageParams reads ?page and ?page_size with the service defaults left to
// the service layer to clamp.
func pageParams(ctx *gin.Context) (int, int) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", "0"))
	return page, pageSize
}

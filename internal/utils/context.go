package utils

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/taskhive-dev/taskhive/internal/middleware"
	"github.com/taskhive-dev/taskhive/internal/types"
)

// ErrNoUser means the handler ran without the auth middleware having
// resolved an identity first. Both a missing key and a foreign value under
// it collapse to this; callers respond 401 either way.
var ErrNoUser = errors.New("no authenticated user in context")

func GetCurrentUser(ctx *gin.Context) (middleware.AuthenticatedUser, error) {
	value, ok := ctx.Get(types.ContextUserKey)

	if !ok {
		return middleware.AuthenticatedUser{}, ErrNoUser
	}

	user, ok := value.(middleware.AuthenticatedUser)

	if !ok {
		return middleware.AuthenticatedUser{}, ErrNoUser
	}

	return user, nil
}

func GetCurrentUserID(ctx *gin.Context) (uint, error) {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return 0, err
	}

	return user.ID, nil
}

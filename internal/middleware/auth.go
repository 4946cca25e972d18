package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/carbontrack/internal/auth"
	"github.com/monocle-dev/carbontrack/internal/logging"
	"github.com/monocle-dev/carbontrack/internal/types"
	"github.com/monocle-dev/carbontrack/internal/utils"
)

// Sessions loads the signed session cookie into the request context.
func Sessions(manager *auth.Manager) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set(types.ContextSessionKey, manager.Load(ctx.Request))
		ctx.Next()
	}
}

// RequireLogin redirects anonymous browsers to the login page.
func RequireLogin(manager *auth.Manager) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		session := utils.GetSession(ctx)

		if session.Authenticated() {
			ctx.Next()
			return
		}

		session.AddFlash(types.FlashLoginRequired)
		abortWithRedirect(ctx, manager, session, "/login")
	}
}

// RequireAdmin redirects callers without the admin flag to the home page.
func RequireAdmin(manager *auth.Manager) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		session := utils.GetSession(ctx)

		if session.IsAdmin && session.UserID != 0 {
			ctx.Next()
			return
		}

		logging.Log.WithField("user_id", session.UserID).Warn("non-admin attempted moderation")
		abortWithRedirect(ctx, manager, session, "/")
	}
}

// RequireAPISession answers JSON 401 instead of redirecting.
func RequireAPISession() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !utils.GetSession(ctx).Authenticated() {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}
		ctx.Next()
	}
}

func abortWithRedirect(ctx *gin.Context, manager *auth.Manager, session *auth.Session, location string) {
	if err := manager.Save(ctx.Writer, session); err != nil {
		logging.Log.WithError(err).Error("failed to save session")
	}
	ctx.Redirect(http.StatusFound, location)
	ctx.Abort()
}

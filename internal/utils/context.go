package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/carbontrack/internal/auth"
	"github.com/monocle-dev/carbontrack/internal/types"
)

// GetSession returns the request's session. Routes mounted without the
// session middleware get a fresh empty one so callers never see nil.
func GetSession(ctx *gin.Context) *auth.Session {
	value, exists := ctx.Get(types.ContextSessionKey)

	if !exists {
		session := &auth.Session{}
		ctx.Set(types.ContextSessionKey, session)
		return session
	}

	session, ok := value.(*auth.Session)

	if !ok {
		session = &auth.Session{}
		ctx.Set(types.ContextSessionKey, session)
	}

	return session
}

func GetRequestID(ctx *gin.Context) string {
	return ctx.GetString(types.ContextRequestIDKey)
}

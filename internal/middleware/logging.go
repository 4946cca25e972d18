package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/monocle-dev/carbontrack/internal/logging"
	"github.com/monocle-dev/carbontrack/internal/types"
	"github.com/monocle-dev/carbontrack/internal/utils"
	"github.com/sirupsen/logrus"
)

// RequestLogger tags every request with an id and logs it once finished.
// The level follows the status class.
func RequestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		requestID := ctx.GetHeader(types.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.Set(types.ContextRequestIDKey, requestID)
		ctx.Header(types.RequestIDHeader, requestID)

		ctx.Next()

		status := ctx.Writer.Status()
		entry := logging.Log.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     ctx.Request.Method,
			"path":       ctx.Request.URL.Path,
			"status":     status,
			"duration":   time.Since(start).String(),
			"ip":         ctx.ClientIP(),
			"size":       ctx.Writer.Size(),
		})

		if session := utils.GetSession(ctx); session.UserID != 0 {
			entry = entry.WithField("user_id", session.UserID)
		}

		if len(ctx.Errors) > 0 {
			entry = entry.WithField("error", ctx.Errors.String())
		}

		switch {
		case status >= 500:
			entry.Error("HTTP request failed")
		case status >= 400:
			entry.Warn("HTTP request processed")
		default:
			entry.Info("HTTP request processed")
		}
	}
}

package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/carbontrack/internal/auth"
	"github.com/monocle-dev/carbontrack/internal/footprint"
	"github.com/monocle-dev/carbontrack/internal/logging"
	"github.com/monocle-dev/carbontrack/internal/services"
	"github.com/monocle-dev/carbontrack/internal/store"
	"github.com/monocle-dev/carbontrack/internal/types"
	"github.com/monocle-dev/carbontrack/internal/utils"
)

type Predictor interface {
	Predict(ctx context.Context, s footprint.Survey) (float64, error)
}

type WeatherSource interface {
	Weather(ctx context.Context, city string) (map[string]any, error)
}

type NewsSource interface {
	Latest(ctx context.Context, city string) ([]types.NewsArticle, error)
}

type Deps struct {
	Store     *store.Store
	Sessions  *auth.Manager
	Predictor Predictor
	Weather   WeatherSource
	News      NewsSource
	Notifier  services.Notifier
	Hub       *LeaderboardHub
}

type Handler struct {
	store     *store.Store
	sessions  *auth.Manager
	predictor Predictor
	weather   WeatherSource
	news      NewsSource
	notifier  services.Notifier
	hub       *LeaderboardHub
}

func New(deps Deps) *Handler {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = services.NopNotifier{}
	}

	hub := deps.Hub
	if hub == nil {
		hub = NewLeaderboardHub(nil)
	}

	return &Handler{
		store:     deps.Store,
		sessions:  deps.Sessions,
		predictor: deps.Predictor,
		weather:   deps.Weather,
		news:      deps.News,
		notifier:  notifier,
		hub:       hub,
	}
}

func (h *Handler) Hub() *LeaderboardHub {
	return h.hub
}

// render writes an HTML page. Pending flashes are consumed into the page and
// the session is saved before the body goes out.
func (h *Handler) render(ctx *gin.Context, status int, name string, data gin.H) {
	session := utils.GetSession(ctx)

	if data == nil {
		data = gin.H{}
	}

	data["Flashes"] = session.PopFlashes()
	data["Session"] = session

	h.saveSession(ctx, session)

	ctx.HTML(status, name, data)
}

func (h *Handler) redirect(ctx *gin.Context, location string) {
	h.saveSession(ctx, utils.GetSession(ctx))
	ctx.Redirect(http.StatusFound, location)
}

// flashRedirect queues message and redirects to location.
func (h *Handler) flashRedirect(ctx *gin.Context, message, location string) {
	utils.GetSession(ctx).AddFlash(message)
	h.redirect(ctx, location)
}

func (h *Handler) saveSession(ctx *gin.Context, session *auth.Session) {
	if err := h.sessions.Save(ctx.Writer, session); err != nil {
		logging.Log.WithError(err).WithField("request_id", utils.GetRequestID(ctx)).Error("failed to save session")
	}
}

func (h *Handler) notFound(ctx *gin.Context, message string) {
	h.render(ctx, http.StatusNotFound, "error.html", gin.H{"Title": "Not Found", "Message": message})
}

func (h *Handler) serverError(ctx *gin.Context, err error, message string) {
	logging.Log.WithError(err).WithField("request_id", utils.GetRequestID(ctx)).Error(message)
	_ = ctx.Error(err)
	h.render(ctx, http.StatusInternalServerError, "error.html", gin.H{"Title": "Error", "Message": types.FlashSomethingWrong})
}

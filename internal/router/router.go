package router

import (
	"html/template"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/carbontrack/internal/auth"
	"github.com/monocle-dev/carbontrack/internal/handlers"
	"github.com/monocle-dev/carbontrack/internal/middleware"
)

type Options struct {
	AllowedOrigins []string
	Templates      *template.Template
}

func NewRouter(h *handlers.Handler, sessions *auth.Manager, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	r.SetHTMLTemplate(opts.Templates)

	r.Use(middleware.Sessions(sessions))

	login := middleware.RequireLogin(sessions)
	admin := middleware.RequireAdmin(sessions)

	r.GET("/", h.Index)
	r.GET("/index", login, h.Index)

	r.GET("/form", h.ShowSurvey)
	r.POST("/form", h.SubmitSurvey)
	r.GET("/result", h.Result)
	r.GET("/leaderboard", h.Leaderboard)
	r.GET("/visualize", h.Visualize)

	r.GET("/register", h.ShowRegister)
	r.POST("/register", h.Register)
	r.GET("/login", h.ShowLogin)
	r.POST("/login", h.Login)
	r.GET("/login_admin", h.ShowAdminLogin)
	r.POST("/login_admin", h.AdminLogin)
	r.GET("/logout", h.Logout)
	r.POST("/logout", h.Logout)

	r.GET("/dashboard", login, h.Dashboard)
	r.POST("/dashboard", login, h.Dashboard)

	r.GET("/community", h.Community)
	r.POST("/community", login, h.CreatePost)
	r.GET("/post/:id", login, h.ShowPost)
	r.POST("/post/:id", login, h.PostAction)

	moderation := r.Group("/admin", admin)
	{
		moderation.GET("/delete_post/:id", h.DeletePost)
		moderation.GET("/delete_comment/:id", h.DeleteComment)
	}

	r.GET("/ws/leaderboard", h.Hub().Serve)

	api := r.Group("/api")
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/weather", h.Weather)
		api.GET("/news", h.News)
		api.GET("/history", middleware.RequireAPISession(), h.HistoryAPI)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	config := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// cors refuses a config that allows no origin at all.
	if len(origins) == 0 {
		config.AllowOriginFunc = func(string) bool { return false }
	}

	return config
}

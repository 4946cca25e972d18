package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/carbontrack/db"
	"github.com/monocle-dev/carbontrack/internal/auth"
	"github.com/monocle-dev/carbontrack/internal/config"
	"github.com/monocle-dev/carbontrack/internal/external"
	"github.com/monocle-dev/carbontrack/internal/footprint"
	"github.com/monocle-dev/carbontrack/internal/handlers"
	"github.com/monocle-dev/carbontrack/internal/logging"
	"github.com/monocle-dev/carbontrack/internal/models"
	"github.com/monocle-dev/carbontrack/internal/router"
	"github.com/monocle-dev/carbontrack/internal/services"
	"github.com/monocle-dev/carbontrack/internal/store"
	"github.com/monocle-dev/carbontrack/web"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()

	if err != nil {
		logging.Log.Fatalf("Error loading configuration: %v", err)
	}

	logging.Init(cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(cfg.Server.Mode)

	database, err := db.ConnectDatabase(cfg.Database.URL)

	if err != nil {
		logging.Log.Fatalf("Failed to connect to database: %v", err)
	}

	if err = db.MigrateDatabase(database); err != nil {
		logging.Log.Fatalf("Failed to migrate database: %v", err)
	}

	st := store.New(database)

	if err = seedAdmin(st, cfg.Admin); err != nil {
		logging.Log.Fatalf("Failed to seed admin account: %v", err)
	}

	artifact, err := footprint.LoadArtifact(footprint.Paths{
		Model:    cfg.Model.Path,
		Encoders: cfg.Model.EncodersPath,
		Scaler:   cfg.Model.ScalerPath,
	})

	if err != nil {
		logging.Log.Fatalf("Failed to load model artifacts: %v", err)
	}

	sessions, err := auth.NewManager(cfg.Session.Secret, cfg.Session.MaxAge, cfg.Session.Secure)

	if err != nil {
		logging.Log.Fatalf("Failed to create session manager: %v", err)
	}

	apis := external.Config{
		WeatherURL: cfg.APIs.WeatherURL,
		WeatherKey: cfg.APIs.WeatherKey,
		AQIURL:     cfg.APIs.AQIURL,
		AQIKey:     cfg.APIs.AQIKey,
		NewsURL:    cfg.APIs.NewsURL,
		NewsKey:    cfg.APIs.NewsKey,
		Timeout:    cfg.APIs.Timeout,
	}

	h := handlers.New(handlers.Deps{
		Store:     st,
		Sessions:  sessions,
		Predictor: artifact,
		Weather:   external.NewWeatherClient(apis),
		News:      external.NewNewsClient(apis),
		Notifier:  services.NewWebhookNotifier(cfg.Webhooks.Discord, cfg.Webhooks.Slack, cfg.APIs.Timeout),
		Hub:       handlers.NewLeaderboardHub(cfg.Server.AllowedOrigins),
	})

	templates, err := web.Templates()

	if err != nil {
		logging.Log.Fatalf("Failed to parse templates: %v", err)
	}

	srv := &http.Server{
		Addr: cfg.Server.Address,
		Handler: router.NewRouter(h, sessions, router.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Templates:      templates,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Log.WithField("address", srv.Addr).Info("CarbonTrack listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Log.WithError(err).Error("Forced shutdown")
	}
}

func seedAdmin(st *store.Store, cfg config.AdminConfig) error {
	if cfg.Email == "" || cfg.Password == "" {
		return nil
	}

	hash, err := auth.HashPassword(cfg.Password)

	if err != nil {
		return err
	}

	created, err := st.EnsureAdmin(context.Background(), &models.User{
		Email:        strings.ToLower(strings.TrimSpace(cfg.Email)),
		PasswordHash: hash,
		Name:         cfg.Name,
		City:         cfg.City,
	})

	if err != nil {
		return err
	}

	if created {
		logging.Log.WithFields(logrus.Fields{"email": cfg.Email}).Info("Admin account created")
	}

	return nil
}

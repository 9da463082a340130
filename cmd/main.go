package main

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/rs/cors"

	"github.com/s/investorAcademy/internal/auth"
	"github.com/s/investorAcademy/internal/config"
	"github.com/s/investorAcademy/internal/database"
	"github.com/s/investorAcademy/internal/handlers"
	"github.com/s/investorAcademy/internal/learning"
	"github.com/s/investorAcademy/internal/logger"
	"github.com/s/investorAcademy/internal/router"
	"github.com/s/investorAcademy/internal/storage"
)

func main() {
	// ---------------------------
	// 0. Environment and config
	// ---------------------------
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config: ", err)
	}

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatal("logger: ", err)
	}
	defer appLog.Sync()

	// ---------------------------
	// 1. Database
	// ---------------------------
	db, err := database.Connect(cfg.DatabaseURL, cfg.DBConnectAttempts, appLog)
	if err != nil {
		appLog.Fatal("database connection failed", "error", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		appLog.Fatal("migration failed", "error", err)
	}
	if err := database.Seed(db); err != nil {
		appLog.Fatal("seeding roles failed", "error", err)
	}

	store := storage.New(db, appLog)
	svc := learning.NewService(store, appLog, learning.Options{
		ReorderTransactional: cfg.ReorderTransactional,
		ToggleMaxAttempts:    cfg.ToggleMaxAttempts,
		ToggleRetryDelay:     cfg.ToggleRetryDelay,
	})

	// ---------------------------
	// 2. Google OAuth and sessions
	// ---------------------------
	oauthConfig := auth.InitGoogleOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionKey))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}

	// ---------------------------
	// 3. Handlers and routes
	// ---------------------------
	h := handlers.NewHandler(svc, store, sessionStore, oauthConfig, appLog)
	r := router.New(h)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           corsHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	appLog.Info("server listening", "addr", srv.Addr, "reorder_transactional", cfg.ReorderTransactional)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		appLog.Fatal("server stopped", "error", err)
	}
}

package main

import (
	"context"
	"encoding/hex"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"viktresan/internal/db"
	"viktresan/internal/handlers"
	mw "viktresan/internal/middleware"
	"viktresan/internal/services"
	"viktresan/internal/sharing"
	"viktresan/internal/tracker"
)

func getenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustKey(logger *zap.Logger, name string) []byte {
	key, err := hex.DecodeString(os.Getenv(name))
	if err != nil || len(key) != 32 {
		logger.Fatal("key must be 64 hex characters (32 bytes)", zap.String("env", name))
	}
	return key
}

func main() {
	_ = godotenv.Load()

	var logger *zap.Logger
	var err error
	if getenv("APP_ENV", "production") == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}
	encSvc, err := services.NewEncryptionService(
		mustKey(logger, "ENCRYPTION_KEY"),
		mustKey(logger, "BLIND_INDEX_KEY"),
	)
	if err != nil {
		logger.Fatal("could not init encryption", zap.Error(err))
	}
	port := getenv("PORT", "8080")

	dbConn, err := sqlx.Open("pgx", databaseURL)
	if err != nil {
		logger.Fatal("failed to open db", zap.Error(err))
	}
	dbConn.SetMaxOpenConns(10)
	dbConn.SetConnMaxLifetime(2 * time.Hour)
	if err = dbConn.Ping(); err != nil {
		logger.Fatal("failed to ping db", zap.Error(err))
	}
	if err := db.RunMigrations(dbConn); err != nil {
		logger.Fatal("failed migrations", zap.Error(err))
	}

	trackerSvc := tracker.NewService(
		tracker.NewPostgresWeightRepo(dbConn),
		tracker.NewPostgresProfileRepo(dbConn),
	)
	sharingSvc := sharing.NewService(
		sharing.NewPostgresGrantRepo(dbConn),
		sharing.NewPostgresAccountDirectory(dbConn, encSvc),
		sharing.NewPostgresProfileDirectory(dbConn),
	)

	authHandler := handlers.NewAuthHandler(dbConn, encSvc, []byte(jwtSecret), logger)
	profileHandler := handlers.NewProfileHandler(dbConn)
	weightsHandler := handlers.NewWeightsHandler(trackerSvc)
	walksHandler := handlers.NewWalksHandler(dbConn)
	sharingHandler := handlers.NewSharingHandler(sharingSvc)
	dashboardHandler := handlers.NewDashboardHandler(dbConn)
	importHandler := handlers.NewImportHandler(dbConn)
	accountHandler := handlers.NewAccountHandler(dbConn, logger)
	authMW := mw.NewAuthMiddleware([]byte(jwtSecret))

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(mw.RequestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/signup", authHandler.Signup)
		api.Post("/auth/login", authHandler.Login)
		api.Post("/auth/reset-request", authHandler.ResetRequest)
		api.Post("/auth/reset", authHandler.ResetConfirm)
		api.Group(func(pr chi.Router) {
			pr.Use(authMW.RequireAuth)
			pr.Get("/profile", profileHandler.GetMe)
			pr.Put("/profile", profileHandler.UpdateMe)
			pr.Post("/weights", weightsHandler.Add)
			pr.Get("/weights", weightsHandler.List)
			pr.Delete("/weights/{entryID}", weightsHandler.Delete)
			pr.Post("/walks", walksHandler.Add)
			pr.Get("/walks", walksHandler.List)
			pr.Delete("/walks/{entryID}", walksHandler.Delete)
			pr.Get("/dashboard", dashboardHandler.Get)
			pr.Post("/import", importHandler.ImportData)
			pr.Post("/share", sharingHandler.Share)
			pr.Get("/share", sharingHandler.Viewers)
			pr.Delete("/share/{viewerID}", sharingHandler.Unshare)
			pr.Get("/profiles/visible", sharingHandler.VisibleProfiles)
			pr.Delete("/account", accountHandler.Delete)
		})
	})

	srv := &http.Server{Addr: ":" + port, Handler: r}
	go func() {
		logger.Info("server starting", zap.String("addr", ":"+port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown initiated")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	logger.Info("server stopped")
}

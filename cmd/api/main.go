//	@title			Circleband API
//	@version		1.0
//	@description	Phone-code authentication, user profiles, and image uploads to object storage.
//
//	@host		localhost:8080
//	@BasePath	/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: **Bearer {token}**

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/circleband/backend/internal/auth"
	"github.com/circleband/backend/internal/config"
	"github.com/circleband/backend/internal/db"
	appMiddleware "github.com/circleband/backend/internal/middleware"
	"github.com/circleband/backend/internal/sms"
	"github.com/circleband/backend/internal/storage"
	"github.com/circleband/backend/internal/token"
	"github.com/circleband/backend/internal/upload"
	"github.com/circleband/backend/internal/user"

	_ "github.com/circleband/backend/docs/swagger"
)

func main() {
	cfg := config.Load()

	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	store, err := storage.NewMinioStorage(
		cfg.StorageEndpoint,
		cfg.StorageAccessKey,
		cfg.StorageSecretKey,
		cfg.StorageBucket,
		cfg.StoragePublicBase,
		cfg.StorageUseSSL,
	)
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}

	tokenSvc := token.NewService(token.Config{
		Secret:        cfg.TokenSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
		RotateRefresh: cfg.RotateRefreshTokens,
	})

	var sender sms.Sender = sms.LogSender{}
	if cfg.SMSProvider == "twilio" {
		sender = sms.NewHTTPSender(cfg.SMSAccountSID, cfg.SMSAuthToken, cfg.SMSFromNumber)
	}

	// Wire dependencies: repository → service → handler
	userRepo := user.NewRepository(pool)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	authRepo := auth.NewRepository(pool)
	authSvc := auth.NewService(authRepo, userSvc, sender, tokenSvc, cfg)
	authHandler := auth.NewHandler(authSvc, cfg)

	uploadGw := upload.NewGateway(store, cfg.UploadAllowRawPayload)
	uploadHandler := upload.NewHandler(uploadGw, cfg.UploadDefaultFolder)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Filename"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI — available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/send-sms-code", authHandler.SendSMSCode)
		r.Post("/login", authHandler.Login)
		r.Delete("/login", authHandler.Logout)
		r.Post("/refresh-token", authHandler.RefreshToken)

		// Protected endpoints
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.RequireAuth(tokenSvc))
			r.Get("/profile", userHandler.GetProfile)
			r.Post("/profile", userHandler.UpdateProfile)
			r.Post("/upload-image", uploadHandler.UploadImage)
			r.Post("/upload-images", uploadHandler.UploadImages)
			r.Post("/upload-binary-image", uploadHandler.UploadBinaryImage)
			r.Post("/upload-raw-binary-image", uploadHandler.UploadRawBinaryImage)
			r.Delete("/delete-image", uploadHandler.DeleteImage)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server listening on :%s (env=%s)", cfg.Port, cfg.AppEnv)
		log.Printf("swagger UI at http://localhost:%s/swagger/", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Println("server stopped")
}

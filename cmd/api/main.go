//	@title			Rittz Accessories API
//	@version		1.0
//	@description	Backend for the Rittz Accessories e-commerce and marketing site.
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

	"github.com/rittz/backend/internal/config"
	"github.com/rittz/backend/internal/db"
	"github.com/rittz/backend/internal/logger"
	"github.com/rittz/backend/internal/media"
	appMiddleware "github.com/rittz/backend/internal/middleware"
	"github.com/rittz/backend/internal/navbar"
	"github.com/rittz/backend/internal/product"
	"github.com/rittz/backend/internal/response"
	"github.com/rittz/backend/internal/seo"
	"github.com/rittz/backend/internal/storage"
	"github.com/rittz/backend/internal/user"

	_ "github.com/rittz/backend/docs/swagger"
)

func main() {
	cfg := config.Load()
	slogger := logger.New(cfg.IsProduction())

	pool, err := db.Connect(context.Background(), cfg.DatabaseURL, slogger)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL, slogger); err != nil {
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

	// Media pipelines: one policy, key deriver, and storage handle shared
	// read-only across requests.
	policy := media.DefaultPolicy(cfg.MaxFileSize, cfg.MaxFileCount, cfg.MaxTotalSize)
	keys := media.NewKeyDeriver()
	uploader := media.NewUploader(store, policy, keys, cfg.UploadKeyPrefix, slogger)
	deleter := media.NewDeleter(store, cfg.StoragePublicBase, slogger)
	pipeline := media.NewTranscodePipeline(store, &media.FFmpeg{BinPath: cfg.FFmpegPath}, keys, cfg.TempUploadDir, slogger)
	fetcher := media.NewFetcher(store, keys, time.Duration(cfg.FetchTimeoutSecs)*time.Second, slogger)
	mediaHandler := media.NewHandler(uploader, pipeline, fetcher, deleter, slogger)

	// Wire dependencies: repository → service → handler
	userRepo := user.NewRepository(pool)
	userSvc := user.NewService(userRepo, cfg)
	userHandler := user.NewHandler(userSvc)

	navbarRepo := navbar.NewRepository(pool)
	navbarSvc := navbar.NewService(navbarRepo, deleter, slogger)
	navbarHandler := navbar.NewHandler(navbarSvc, uploader)

	productRepo := product.NewRepository(pool)
	productSvc := product.NewService(productRepo, navbarSvc, deleter, slogger)
	productHandler := product.NewHandler(productSvc, uploader)

	seoRepo := seo.NewRepository(pool)
	seoSvc := seo.NewService(seoRepo, deleter, slogger)
	seoHandler := seo.NewHandler(seoSvc, uploader)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.RequestLogger(slogger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
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
		r.Route("/users", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.With(appMiddleware.RequireAuth(cfg.JWTSecret)).Get("/me", userHandler.GetMe)
		})

		r.Route("/navbar", func(r chi.Router) {
			r.Get("/getnavbar", navbarHandler.Get)
			r.With(appMiddleware.RequireAuth(cfg.JWTSecret)).Put("/update", navbarHandler.Update)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/getproduct", productHandler.Get)
			r.Group(func(r chi.Router) {
				r.Use(appMiddleware.RequireAuth(cfg.JWTSecret))
				r.Post("/addnewproduct", productHandler.AddNew)
				r.Put("/updateproduct/{id}", productHandler.Update)
				r.Delete("/deleteproduct/{id}", productHandler.Delete)
			})
		})

		r.Route("/seo", func(r chi.Router) {
			r.Get("/getAll", seoHandler.List)
			r.Get("/get/{id}", seoHandler.Get)
			r.Get("/slug/{slug}", seoHandler.GetBySlug)
			r.Group(func(r chi.Router) {
				r.Use(appMiddleware.RequireAuth(cfg.JWTSecret))
				r.Post("/create", seoHandler.Create)
				r.Put("/update/{id}", seoHandler.Update)
				r.Delete("/delete/{id}", seoHandler.Delete)
				r.Delete("/remove-icon/{id}/icon", seoHandler.RemoveIcon)
			})
		})

		r.Route("/media", func(r chi.Router) {
			r.Use(appMiddleware.RequireAuth(cfg.JWTSecret))
			r.Post("/upload", mediaHandler.Upload)
			r.Post("/videos/convert", mediaHandler.ConvertVideo)
			r.Post("/videos/fetch", mediaHandler.FetchVideo)
			r.Delete("/assets", mediaHandler.DeleteAsset)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "route not found")
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
		slogger.Info("server listening", "port", cfg.Port, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	slogger.Info("shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	slogger.Info("server stopped")
}

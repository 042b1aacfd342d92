package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"glyphtone/cache"
	"glyphtone/config"
	"glyphtone/core/audio"
	"glyphtone/core/composer"
	"glyphtone/core/watch"
	"glyphtone/db"
	"glyphtone/logger"
	"glyphtone/model"
	"glyphtone/repository"
	"glyphtone/storage"
)

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if err := storage.InitMinio(cfg); err != nil {
		log.Fatalf("Failed to initialize MinIO: %v", err)
	}

	if err := db.ConnectDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.DB.Close()

	if err := db.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := db.ConnectGormDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database with GORM: %v", err)
	}
	defer db.CloseGormDB()

	if err := db.AutoMigrateModels(&model.PerformanceRecord{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Redis is optional; without it every export recomputes its payload.
	var payloadCache composer.PayloadCache
	if err := db.ConnectRedis(cfg); err != nil {
		logger.Warn("Redis unavailable, payload caching disabled", logger.ErrorField(err))
	} else {
		defer db.CloseRedis()
		payloadCache = cache.NewPayloadCache(db.RedisClient)
	}

	ensureDirExists(cfg.UploadDir)
	ensureDirExists(cfg.ExportDir)

	audioProcessor := audio.NewFFmpegProcessor(cfg.FFmpegPath, cfg.AudioBitrate)
	comp := composer.New(audioProcessor, payloadCache)
	exportRepo := repository.NewMySQLExportRepository()
	perfRepo := repository.NewGormPerformanceRepository(db.GormDB)

	apiHandler := NewAPIHandler(exportRepo, perfRepo, comp, cfg)

	router := mux.NewRouter()

	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// Export pipeline endpoints.
	router.HandleFunc("/api/export", apiHandler.AuthMiddleware(apiHandler.ExportHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/exports", apiHandler.AuthMiddleware(apiHandler.ListExportsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/exports/{uuid}", apiHandler.AuthMiddleware(apiHandler.GetExportHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/exports/{uuid}/download", apiHandler.AuthMiddleware(apiHandler.DownloadExportHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/decode", apiHandler.AuthMiddleware(apiHandler.DecodeHandler)).Methods(http.MethodPost)

	// Performance document endpoints.
	router.HandleFunc("/api/performances", apiHandler.AuthMiddleware(apiHandler.PerformancesHandler)).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc("/api/performances/import-midi", apiHandler.AuthMiddleware(apiHandler.ImportMIDIHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/performances/{id}", apiHandler.AuthMiddleware(apiHandler.PerformanceHandler)).Methods(http.MethodGet, http.MethodPut, http.MethodDelete)

	// Preview websocket; auth is handled inside the upgrade request.
	router.HandleFunc("/api/preview", apiHandler.AuthMiddleware(apiHandler.PreviewHandler)).Methods(http.MethodGet)

	// Frontend UI serving.
	uiFileServer := http.FileServer(http.Dir(cfg.WebAppDir))
	router.PathPrefix("/").Handler(uiFileServer)

	server.Handler = router

	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	if cfg.WatchDir != "" {
		ensureDirExists(cfg.WatchDir)
		watcher := watch.New(cfg.WatchDir, cfg.ExportDir, comp)
		go func() {
			if err := watcher.Run(watchCtx); err != nil {
				logger.Error("hot folder watcher stopped", logger.ErrorField(err))
			}
		}()
		logger.Info("hot folder watcher started", logger.String("dir", cfg.WatchDir))
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", logger.String("addr", cfg.ServerAddr))
		log.Printf("Access the composer UI at http://localhost%s/", cfg.ServerAddr)
		log.Println("Export tagged files via POST to /api/export")
		log.Println("Inspect payloads via POST to /api/decode")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-stop
	logger.Info("shutting down server")
	cancelWatch()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("server stopped")
}

func ensureDirExists(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", path, err)
		}
	} else if err != nil {
		log.Fatalf("Failed to check directory %s: %v", path, err)
	}
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"influencer-battle/config"
	"influencer-battle/handlers"
	"influencer-battle/services"
	"influencer-battle/utils"
	"influencer-battle/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	app := fiber.New(fiber.Config{
		BodyLimit: int(cfg.MaxUploadBytes) + 1024*1024, // room for form fields around the file
	})

	allowedOrigins := strings.Join(cfg.AllowedOrigins, ",")
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Live backend is optional; everything falls back to the seed data.
	var live services.LiveStore = services.OfflineStore{}
	if cfg.DatabaseURL == "" {
		log.Println("⚠️  DATABASE_URL not set, serving fallback data only")
	} else if store, err := services.ConnectLive(cfg.DatabaseURL); err != nil {
		log.Printf("⚠️  live database unavailable, serving fallback data: %v", err)
	} else {
		defer store.Close()
		live = store
	}

	var storage services.ObjectStorage
	if cfg.Storage.Enabled() {
		s3Storage, err := utils.NewS3Storage(ctx, utils.S3Config{
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			PublicBaseURL:   cfg.Storage.PublicBaseURL,
		})
		if err != nil {
			log.Printf("⚠️  object storage disabled: %v", err)
		} else {
			storage = s3Storage
		}
	}

	dispatcher := workers.NewAutomationDispatcher(cfg.AutomationWebhookURL, 64)
	dispatcher.Start(ctx)

	backend := services.NewBackend(live, storage, dispatcher, cfg.ProfileFetchTimeout, cfg.AutomationSource)

	latency := services.DefaultDemoLatency()
	if !cfg.DemoLatency {
		latency = services.DemoLatency{}
	}
	data := services.NewDataService(live, services.NewFallbackStore(), backend, cfg.ListQueryTimeout, latency)
	data.MediaBucket = cfg.MediaBucket

	cache, err := services.OpenSQLiteProfileCache(cfg.SessionCachePath)
	if err != nil {
		log.Fatal("failed to open session cache:", err)
	}
	defer cache.Close()

	registry := services.NewSessionRegistry(func() *services.SessionController {
		return services.NewSessionController(services.NewGoTrueClient(cfg.AuthURL, cfg.AuthAnonKey), backend, cache)
	}, cfg.SessionIdleTTL)

	scheduler, err := registry.StartEvictionScheduler(time.Minute)
	if err != nil {
		log.Fatal("failed to start session eviction:", err)
	}

	handlers.SetupRoutes(app, registry, &handlers.API{
		Data:           data,
		Backend:        backend,
		MediaBucket:    cfg.MediaBucket,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", cfg.Port)
	log.Printf("✅ CORS configured for origins: %s", allowedOrigins)
	if cfg.AutomationWebhookURL != "" {
		log.Println("✅ Automation dispatcher running")
	}

	<-ctx.Done()
	log.Println("Shutting down server...")
	_ = app.Shutdown()
	_ = scheduler.Shutdown()
	dispatcher.Wait()
}

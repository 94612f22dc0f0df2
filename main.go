package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/presencematic/whatsapp-orders/database"
	"github.com/presencematic/whatsapp-orders/internal/config"
	"github.com/presencematic/whatsapp-orders/internal/handlers"
	"github.com/presencematic/whatsapp-orders/internal/jobs"
	"github.com/presencematic/whatsapp-orders/internal/routes"
	"github.com/presencematic/whatsapp-orders/internal/services"
	"github.com/presencematic/whatsapp-orders/internal/storage"
)

const version = "1.0.0"

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		config.LoadDotEnv()
	}
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize session storage
	var sessions storage.SessionStore
	var redisCheck func() error

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis at %s: %v", cfg.RedisAddr, err)
		}
		defer rdb.Close()

		sessions = storage.NewRedisSessionStore(rdb, cfg.SessionTTL)
		redisCheck = func() error { return rdb.Ping(context.Background()).Err() }
		log.Printf("✅ Using Redis session storage (%s)", cfg.RedisAddr)
	} else {
		sessions = storage.NewMemoryStore(cfg.SessionTTL)
		log.Println("📦 Using in-memory session storage")
	}

	// Initialize order stores; any failure leaves the bot running without it
	var sinks []services.OrderSink

	if cfg.GoogleCredsJSON != "" {
		setupCtx, setupCancel := context.WithTimeout(ctx, 30*time.Second)
		sheetsSink, err := services.NewSheetsSink(setupCtx, cfg.GoogleCredsJSON, cfg.SheetName, cfg.SpreadsheetID)
		setupCancel()
		if err != nil {
			log.Printf("⚠️  Google Sheets setup failed: %v", err)
		} else {
			sinks = append(sinks, sheetsSink)
		}
	} else {
		log.Println("❌ GOOGLE_CREDS_JSON not found in environment variables.")
	}

	var orderDB *storage.DatabaseOrderSink
	var dbCheck func() error
	if cfg.DatabaseConfigured() {
		log.Println("📦 Connecting to PostgreSQL database...")
		db, err := database.Connect(cfg.DatabaseDSN())
		if err != nil {
			log.Printf("⚠️  Order database unavailable: %v", err)
		} else {
			orderDB = storage.NewDatabaseOrderSink(db)
			sinks = append(sinks, orderDB)
			dbCheck = func() error { return database.Ping(db) }
		}
	}

	sink := services.NewMultiSink(sinks...)

	// Initialize services
	orderService := services.NewOrderService(sessions, services.NewConversationEngine(), sink, cfg.PersistTimeout)

	if cfg.TwilioConfigured() {
		twilioService, err := services.NewTwilioService(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppFrom)
		if err != nil {
			log.Printf("⚠️  Twilio service not initialized: %v", err)
		} else if cfg.StaffWhatsAppTo != "" {
			orderService.SetNotifier(services.NewStaffNotifier(twilioService, cfg.StaffWhatsAppTo))
			log.Printf("✅ Staff alerts enabled for %s", cfg.StaffWhatsAppTo)
		}
	}

	// Start session expiry (Redis expires keys itself)
	sweeper := jobs.NewSessionSweeper(sessions, cfg.SessionTTL, cfg.SweepInterval)
	if cfg.RedisAddr == "" {
		sweeper.Start(ctx)
	}

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "PresenceMatic Order Bot v" + version,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	healthHandler := handlers.NewHealthHandler(version, sessions, sink, cfg.TwilioConfigured())
	if redisCheck != nil {
		healthHandler.AddCheck("redis", redisCheck)
	}
	if dbCheck != nil {
		healthHandler.AddCheck("database", dbCheck)
	}

	routes.SetupRoutes(app, cfg, handlers.NewWhatsAppHandler(orderService), healthHandler, orderDB)

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		log.Println("⏹️  Stopping session sweeper...")
		sweeper.Stop()
		log.Println("⏹️  Shutting down server...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 PresenceMatic Order Bot starting on port %s", cfg.Port)
	log.Printf("📊 Sessions: %s", sessionStorageType(cfg))
	log.Printf("🧾 Orders: %s", sink.Name())
	log.Printf("🌍 Environment: %s", cfg.Environment)
	log.Printf("📱 WhatsApp alerts: %s", whatsAppStatus(cfg))
	log.Println("========================================")

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

func sessionStorageType(cfg *config.Config) string {
	if cfg.RedisAddr != "" {
		return "Redis"
	}
	return "In-Memory"
}

func whatsAppStatus(cfg *config.Config) string {
	if !cfg.TwilioConfigured() || cfg.StaffWhatsAppTo == "" {
		return "Not configured"
	}
	return "Configured"
}

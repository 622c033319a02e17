package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parcel-delivery/config"
	"parcel-delivery/database"
	"parcel-delivery/database/seeders"
	"parcel-delivery/httpServices/identity"
	"parcel-delivery/httpServices/processor"
	"parcel-delivery/logger"
	"parcel-delivery/routes"
	"parcel-delivery/services/events"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration: " + err.Error())
	}
	if err := logger.Init(cfg.LogDir); err != nil {
		logger.Error("Failed to open log file, logging to stdout only", err)
	}

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to the database: " + err.Error())
	}
	if err := seeders.SeedAdmins(db, cfg.AdminEmails); err != nil {
		logger.Error("Failed to seed admin accounts", err)
	}

	var publisher events.Publisher = events.NopPublisher{}
	var rabbit *events.RabbitPublisher
	if cfg.RabbitURL != "" {
		rabbit, err = events.NewRabbitPublisher(cfg.RabbitURL, cfg.EventsExchange)
		if err != nil {
			logger.Error("Failed to connect to RabbitMQ, events disabled", err)
		} else {
			publisher = rabbit
			logger.Success("Publishing events to exchange " + cfg.EventsExchange)
		}
	}

	asyncLogger := logger.NewAsyncLogger(db)
	go asyncLogger.ProcessLog()

	app := fiber.New(routes.Config())
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.FrontendURL,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	routes.SetupRoutes(app, routes.Dependencies{
		DB:        db,
		Verifier:  identity.NewVerifier(cfg.PublicKeyURL),
		Processor: processor.NewStripeProcessor(cfg.StripeSecretKey),
		Publisher: publisher,
		Logger:    asyncLogger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Success("Server is running on " + cfg.ListenAddr())
		if err := app.Listen(cfg.ListenAddr()); err != nil {
			logger.Error("Server stopped", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Failed to shut down server cleanly", err)
	}

	asyncLogger.Close()
	if rabbit != nil {
		if err := rabbit.Close(); err != nil {
			logger.Error("Failed to close RabbitMQ connection", err)
		}
	}
	if err := database.Close(db); err != nil {
		logger.Error("Failed to close database", err)
	}
	logger.Success("Server stopped")
}

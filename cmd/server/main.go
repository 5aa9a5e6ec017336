package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ghanu-pos/api/internal/cart"
	"github.com/ghanu-pos/api/internal/config"
	"github.com/ghanu-pos/api/internal/events"
	"github.com/ghanu-pos/api/internal/printer"
	"github.com/ghanu-pos/api/internal/router"
	"github.com/ghanu-pos/api/internal/service"
	"github.com/ghanu-pos/api/internal/storage"
	"github.com/ghanu-pos/api/internal/ws"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// JSON data files
	users, err := storage.OpenUserFile(cfg.UsersFile)
	if err != nil {
		log.Fatalf("Unable to load users: %v", err)
	}
	menuService, err := service.NewMenuService(storage.NewMenuFile(cfg.MenuFile))
	if err != nil {
		log.Fatalf("Unable to load menu: %v", err)
	}
	queue, err := storage.OpenOrderQueue(cfg.CurrentOrdersFile)
	if err != nil {
		log.Fatalf("Unable to load current orders: %v", err)
	}
	ledger := storage.NewOrderLedger(cfg.OrdersFile)
	revenueFile, err := storage.OpenRevenueFile(cfg.RevenueFile)
	if err != nil {
		log.Fatalf("Unable to load revenue ledger: %v", err)
	}

	ownerHash, err := ownerPasswordHash(cfg)
	if err != nil {
		log.Fatalf("Unable to hash owner password: %v", err)
	}

	// Optional Postgres mirror of the order ledger
	var archive service.Archiver
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Unable to connect to database: %v", err)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			log.Fatalf("Unable to ping database: %v", err)
		}
		la := storage.NewLedgerArchive(pool)
		if err := la.EnsureSchema(ctx); err != nil {
			log.Fatalf("Unable to prepare archive: %v", err)
		}
		archive = la
		log.Println("Connected to database, archiving order ledger")
	}

	// Order events: websocket board, plus RabbitMQ when configured
	hub := ws.NewHub()
	go hub.Run()

	publishers := events.Multi{events.NewHubPublisher(hub, ws.TopicOrders)}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.DialAMQP(cfg.AMQPURL)
		if err != nil {
			log.Fatalf("Unable to connect to RabbitMQ: %v", err)
		}
		defer amqpPublisher.Close()
		publishers = append(publishers, amqpPublisher)
		log.Println("Connected to RabbitMQ, publishing order events")
	}

	// Thermal printer
	thermalPrinter, err := printer.NewPrinterFromConfig(
		cfg.PrinterType,
		cfg.PrinterUSBPath,
		cfg.PrinterAddress,
		cfg.ReportsDir,
		cfg.PrinterWidth,
	)
	printerType := cfg.PrinterType
	if err != nil {
		log.Printf("Warning: Failed to initialize printer: %v", err)
		thermalPrinter = printer.NewNullPrinter()
		printerType = "none"
	}
	defer thermalPrinter.Close()

	deps := router.Deps{
		Users:             users,
		Menu:              menuService,
		Orders:            service.NewOrderService(queue, ledger, archive, events.Logged{Next: publishers}),
		Revenue:           service.NewRevenueService(revenueFile),
		Printer:           service.NewPrintService(thermalPrinter, printerType),
		Carts:             cart.NewRegistry(),
		Hub:               hub,
		OwnerPasswordHash: ownerHash,
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router.New(cfg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	// graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("Shutdown signal received, draining requests...")

	shutdownCtx, stop := context.WithTimeout(ctx, 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: shutdown: %v", err)
	}

	if err := queue.Flush(); err != nil {
		log.Printf("ERROR: flush current orders: %v", err)
	}
	if err := revenueFile.Flush(); err != nil {
		log.Printf("ERROR: flush revenue ledger: %v", err)
	}
	log.Println("Server stopped")
}

// ownerPasswordHash prefers a configured bcrypt hash over the plain password.
func ownerPasswordHash(cfg *config.Config) ([]byte, error) {
	if cfg.OwnerPasswordHash != "" {
		return []byte(cfg.OwnerPasswordHash), nil
	}
	return bcrypt.GenerateFromPassword([]byte(cfg.OwnerPassword), bcrypt.DefaultCost)
}

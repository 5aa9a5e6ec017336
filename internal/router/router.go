package router

import (
	"log"
	"net/http"

	"github.com/ghanu-pos/api/internal/cart"
	"github.com/ghanu-pos/api/internal/config"
	"github.com/ghanu-pos/api/internal/enum"
	"github.com/ghanu-pos/api/internal/handler"
	"github.com/ghanu-pos/api/internal/metrics"
	mw "github.com/ghanu-pos/api/internal/middleware"
	"github.com/ghanu-pos/api/internal/receipt"
	"github.com/ghanu-pos/api/internal/service"
	"github.com/ghanu-pos/api/internal/storage"
	"github.com/ghanu-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps carries the long-lived services the routes are built on.
type Deps struct {
	Users   *storage.UserFile
	Menu    *service.MenuService
	Orders  *service.OrderService
	Revenue *service.RevenueService
	Printer *service.PrintService
	Carts   *cart.Registry
	Hub     *ws.Hub

	// OwnerPasswordHash is the bcrypt hash checked before queue removal.
	OwnerPasswordHash []byte
}

// New creates a Chi router with all application routes wired up.
// Applies authentication, role and owner-password middleware as needed.
func New(cfg *config.Config, d Deps) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", mw.OwnerPasswordHeader},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})
	r.Handle("/metrics", metrics.Handler())

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(d.Users, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(d.Hub, cfg.JWTSecret, ws.TopicOrders, w, r)
	})

	restaurant := receipt.Restaurant{
		Name:    cfg.RestaurantName,
		Phone:   cfg.RestaurantPhone,
		Address: cfg.RestaurantAddress,
	}
	menuHandler := handler.NewMenuHandler(d.Menu)
	orderHandler := handler.NewOrderHandler(d.Orders, d.Carts, d.Printer, restaurant)

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Cashier screens
		menuHandler.RegisterRoutes(r)
		handler.NewCartHandler(d.Carts, d.Menu).RegisterRoutes(r)
		orderHandler.RegisterRoutes(r)
		handler.NewPrinterHandler(d.Printer).RegisterRoutes(r)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleAdmin))

			menuHandler.RegisterAdminRoutes(r)

			reportsHandler := handler.NewReportsHandler(d.Orders, d.Printer, cfg.RestaurantName)
			reportsHandler.RegisterRoutes(r)

			revenueHandler := handler.NewRevenueHandler(d.Revenue, d.Printer)
			r.Route("/revenue", revenueHandler.RegisterRoutes)

			// Queue removal additionally needs the owner password.
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireOwnerPassword(d.OwnerPasswordHash))
				orderHandler.RegisterOwnerRoutes(r)
			})
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}

package rest

import (
	"net/http"
	"time"

	"foodcourt-be/internal/analytics"
	"foodcourt-be/internal/auth"
	"foodcourt-be/internal/cart"
	"foodcourt-be/internal/logger"
	"foodcourt-be/internal/menu"
	"foodcourt-be/internal/middleware"
	"foodcourt-be/internal/order"
	"foodcourt-be/internal/payment"
	"foodcourt-be/internal/rating"
	"foodcourt-be/internal/report"
	"foodcourt-be/internal/stall"
	"foodcourt-be/internal/user"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Services are the domain services exposed over HTTP.
type Services struct {
	Users     user.Service
	Stalls    stall.Service
	Menu      menu.Service
	Carts     cart.Service
	Orders    order.Service
	Payments  payment.Service
	Ratings   rating.Service
	Analytics analytics.Service
	Reports   report.Service
}

type Options struct {
	Tokens     middleware.TokenParser
	Limiter    *middleware.RateLimiter
	Realtime   http.Handler
	CORSOrigin string
	// Timeout bounds every API request, including its service calls.
	Timeout time.Duration
}

type Handler struct {
	Services
}

func NewRouter(svcs Services, opts Options) http.Handler {
	h := &Handler{Services: svcs}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(middleware.CORS(opts.CORSOrigin))
	r.Use(middleware.Authenticate(opts.Tokens))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Realtime != nil {
		r.Handle("/ws", opts.Realtime)
	}

	r.Route("/api", func(r chi.Router) {
		if opts.Limiter != nil {
			r.Use(opts.Limiter.Middleware)
		}
		if opts.Timeout > 0 {
			r.Use(chimw.Timeout(opts.Timeout))
		}

		// public
		r.Post("/users/register", h.register)
		r.Get("/users/verify/{token}", h.verifyEmail)
		r.Get("/stalls", h.listStalls)
		r.Get("/stalls/{id}", h.getStall)
		r.Get("/stalls/{id}/menu", h.listMenuByStall)
		r.Get("/stalls/{id}/ratings", h.listRatings)
		r.Get("/menu", h.listMenuByCategory)
		r.Get("/menu/{id}", h.getMenuItem)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/users", h.listUsers)
			r.Post("/users/staff", h.registerStaff)
			r.Get("/users/me", h.profile)
			r.Patch("/users/me", h.updateProfile)
			r.Put("/users/me/password", h.changePassword)

			r.Get("/stalls/mine", h.myStalls)
			r.Post("/stalls", h.createStall)
			r.Patch("/stalls/{id}", h.updateStall)
			r.Delete("/stalls/{id}", h.deleteStall)
			r.Post("/stalls/{id}/ratings", h.rateStall)
			r.Get("/stalls/{id}/ratings/mine", h.myRating)

			r.Post("/menu", h.createMenuItem)
			r.Patch("/menu/{id}", h.updateMenuItem)
			r.Delete("/menu/{id}", h.deleteMenuItem)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.getCart)
				r.Delete("/", h.clearCart)
				r.Post("/items", h.addCartItem)
				r.Patch("/items/{lineID}", h.updateCartItem)
				r.Delete("/items/{lineID}", h.removeCartItem)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", h.createOrder)
				r.Get("/", h.listOrders)
				r.Get("/{id}", h.getOrder)
				r.Patch("/{id}/status", h.updateOrderStatus)
			})

			r.Route("/payments", func(r chi.Router) {
				r.Post("/", h.processPayment)
				r.Get("/{id}", h.getPayment)
				r.Get("/order/{orderID}", h.getPaymentByOrder)
			})

			r.Route("/analytics", func(r chi.Router) {
				r.Use(middleware.RequireRole(auth.RoleFoodCourtOwner))
				r.Get("/dashboard", h.dashboard)
				r.Get("/recent-orders", h.recentOrders)
				r.Get("/top-stalls", h.topStalls)
				r.Get("/sales-trends", h.salesTrends)
				r.Get("/realtime", h.realtimeStats)
			})

			// reports need the document store, which is optional
			if svcs.Reports != nil {
				r.Route("/reports", func(r chi.Router) {
					r.Use(middleware.RequireRole(auth.RoleFoodCourtOwner))
					r.Get("/", h.listReports)
					r.Post("/", h.generateReport)
					r.Get("/{id}", h.getReport)
					r.Get("/{id}/export", h.exportReport)
				})
			}
		})
	})

	return r
}

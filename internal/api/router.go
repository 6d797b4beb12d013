// Package api wires the storefront services to their HTTP surface: chi
// routing, cookie-based authentication and the error-to-status mapping.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mysteryvault/storefront/internal/service"
	"github.com/mysteryvault/storefront/internal/token"
	"github.com/rs/zerolog"
)

type RouterDeps struct {
	Carts        *service.CartService
	Orders       *service.OrderService
	Users        *service.UserService
	TokenMaker   *token.JWTMaker
	Logger       zerolog.Logger
	SecureCookie bool
}

// NewRouter assembles the full route table. The catalog and the auth
// endpoints are public; everything else sits behind the session cookie.
func NewRouter(deps RouterDeps) http.Handler {
	cartHandler := NewCartHandler(deps.Carts)
	orderHandler := NewOrderHandler(deps.Orders)
	authHandler := NewAuthHandler(deps.Users, deps.TokenMaker, deps.SecureCookie)
	userHandler := NewUserHandler(deps.Users)
	catalogHandler := NewCatalogHandler()

	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Logger(deps.Logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", catalogHandler.ListProducts)
		r.Get("/products/{id}", catalogHandler.GetProduct)

		r.Post("/signup", authHandler.SignUp)
		r.Post("/signin", authHandler.SignIn)
		r.Post("/signout", authHandler.SignOut)

		r.Group(func(r chi.Router) {
			r.Use(Authenticator(deps.TokenMaker))

			r.Get("/me", authHandler.Me)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Post("/", cartHandler.SaveCart)
				r.Delete("/", cartHandler.RemoveItem)
				r.Put("/items/{itemId}", cartHandler.UpdateQuantity)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", orderHandler.ListOrders)
				r.Post("/", orderHandler.PlaceOrder)
				r.Get("/{orderId}", orderHandler.GetOrder)
				r.Patch("/{orderId}", orderHandler.UpdateStatus)
				r.Post("/{orderId}/cancel", orderHandler.CancelOrder)
			})

			r.Route("/users/{id}", func(r chi.Router) {
				r.Put("/", userHandler.UpdateProfile)
				r.Put("/password", userHandler.ChangePassword)
				r.Delete("/", userHandler.DeleteAccount)
			})

			r.Route("/address", func(r chi.Router) {
				r.Get("/", userHandler.GetAddress)
				r.Put("/", userHandler.SaveAddress)
			})
		})
	})

	return r
}

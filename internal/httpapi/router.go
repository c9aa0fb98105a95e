package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/engineermuzamil/modernstore/internal/auth"
	"github.com/engineermuzamil/modernstore/internal/repository"
)

type RouterDeps struct {
	Auth     AuthAPI
	Products ProductAPI
	Cart     CartAPI
	Checkout CheckoutAPI
	Tokens   *auth.TokenIssuer
	Users    repository.UserRepository
	Timeout  time.Duration
}

func NewRouter(deps RouterDeps) *chi.Mux {
	authHandler := NewAuthHandler(deps.Auth)
	productHandler := NewProductHandler(deps.Products)
	cartHandler := NewCartHandler(deps.Cart)
	ordersHandler := NewOrdersHandler(deps.Checkout)
	authenticate := Authenticate(deps.Tokens, deps.Users)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(deps.Timeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.With(authenticate).Get("/me", authHandler.Me)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.ListProducts)
			r.Get("/{productID}", productHandler.GetProduct)
			// Admin-gated inside the service; authentication required here.
			r.With(authenticate).Post("/", productHandler.CreateProduct)
			r.With(authenticate).Put("/{productID}", productHandler.UpdateProduct)
			r.With(authenticate).Delete("/{productID}", productHandler.DeleteProduct)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/", cartHandler.GetCart)
			r.Post("/", cartHandler.AddItem)
			r.Put("/{productID}", cartHandler.UpdateQuantity)
			r.Delete("/{productID}", cartHandler.RemoveItem)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", ordersHandler.PlaceOrder)
			r.Get("/", ordersHandler.ListOrders)
			r.Get("/{orderID}", ordersHandler.GetOrder)
		})
	})

	return r
}

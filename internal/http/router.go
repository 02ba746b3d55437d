package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const maxRequestBodySize = 1 << 20 // 1MB

type RouterConfig struct {
	Users          UserService
	Products       ProductService
	Carts          CartService
	Tokens         TokenVerifier
	Logger         *zap.Logger
	RequestTimeout time.Duration
	AuthRateLimit  *RateLimiter
}

func NewRouter(cfg RouterConfig) http.Handler {
	authHandler := NewAuthHandler(cfg.Users, cfg.Logger, cfg.RequestTimeout)
	productHandler := NewProductHandler(cfg.Products, cfg.Logger, cfg.RequestTimeout)
	cartHandler := NewCartHandler(cfg.Carts, cfg.Logger, cfg.RequestTimeout)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestSize(maxRequestBodySize))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, cfg.Logger, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		if cfg.AuthRateLimit != nil {
			r.Use(cfg.AuthRateLimit.Middleware)
		}
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	r.Get("/products", productHandler.List)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Tokens, cfg.Logger))

		r.Get("/product/{id}", productHandler.Get)
		r.Post("/add-product", productHandler.Create)
		r.Patch("/product/edit/{id}", productHandler.Update)
		r.Delete("/product/delete/{id}", productHandler.Delete)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/add", cartHandler.AddToCart)
			r.Delete("/product/delete", cartHandler.RemoveFromCart)
		})
	})

	return otelhttp.NewHandler(r, "go_shop")
}

// routes/routes.go
package routes

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-storefront/controllers"
	"go-storefront/middleware"
)

// Controllers groups the handlers mounted by RegisterRoutes.
type Controllers struct {
	Users    *controllers.UserController
	Products *controllers.ProductController
	Reviews  *controllers.ReviewController
	Orders   *controllers.OrderController
	Stats    *controllers.StatsController
	Upload   *controllers.UploadController
	Health   *controllers.HealthController
}

// Options configures the cross-cutting middleware.
type Options struct {
	Auth           *middleware.Auth
	AllowedOrigins []string
	LoginRPS       float64
	LoginBurst     int
	Logger         *slog.Logger
}

// NewRouter builds the application router with the global middleware chain.
func NewRouter(c Controllers, opts Options) http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.Metrics)
	RegisterRoutes(router, c, opts)

	var h http.Handler = router
	h = middleware.CORS(opts.AllowedOrigins)(h)
	h = middleware.RequestLogging(opts.Logger)(h)
	h = middleware.Recovery(opts.Logger)(h)
	return h
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, c Controllers, opts Options) {
	authed := opts.Auth.AuthMiddleware
	admin := func(h http.HandlerFunc) http.Handler {
		return authed(middleware.AdminMiddleware(h))
	}

	router.HandleFunc("/", c.Health.Root).Methods(http.MethodGet)
	router.HandleFunc("/healthz", c.Health.Healthz).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/upload-image", c.Upload.UploadImage).Methods(http.MethodPost)

	// Auth routes
	auth := router.PathPrefix("/api/auth").Subrouter()
	limited := middleware.RateLimit(opts.LoginRPS, opts.LoginBurst, opts.Logger)
	auth.Handle("/register", limited(http.HandlerFunc(c.Users.Register))).Methods(http.MethodPost)
	auth.Handle("/login", limited(http.HandlerFunc(c.Users.Login))).Methods(http.MethodPost)
	auth.HandleFunc("/logout", c.Users.Logout).Methods(http.MethodPost)
	auth.Handle("/users", admin(c.Users.ListUsers)).Methods(http.MethodGet)
	auth.Handle("/users/{id}", admin(c.Users.DeleteUser)).Methods(http.MethodDelete)
	auth.Handle("/users/{id}", admin(c.Users.UpdateUserRole)).Methods(http.MethodPut)
	auth.Handle("/update-profile", authed(http.HandlerFunc(c.Users.UpdateProfile))).Methods(http.MethodPatch)

	// Product routes
	products := router.PathPrefix("/api/products").Subrouter()
	products.Handle("/create-product", authed(http.HandlerFunc(c.Products.CreateProduct))).Methods(http.MethodPost)
	products.HandleFunc("", c.Products.GetProducts).Methods(http.MethodGet)
	products.HandleFunc("/", c.Products.GetProducts).Methods(http.MethodGet)
	products.HandleFunc("/related/{id}", c.Products.RelatedProducts).Methods(http.MethodGet)
	products.Handle("/update-product/{id}", admin(c.Products.UpdateProduct)).Methods(http.MethodPatch)
	products.HandleFunc("/{id}", c.Products.GetProductByID).Methods(http.MethodGet)
	products.Handle("/{id}", admin(c.Products.DeleteProduct)).Methods(http.MethodDelete)

	// Review routes
	reviews := router.PathPrefix("/api/reviews").Subrouter()
	reviews.Handle("/post-review", authed(http.HandlerFunc(c.Reviews.PostReview))).Methods(http.MethodPost)
	reviews.HandleFunc("/total-reviews", c.Reviews.TotalReviews).Methods(http.MethodGet)
	reviews.HandleFunc("/{userId}", c.Reviews.ReviewsByUser).Methods(http.MethodGet)

	// Order routes. /order/{id} is registered before /{email} so it wins.
	orders := router.PathPrefix("/api/orders").Subrouter()
	orders.HandleFunc("/create-checkout-session", c.Orders.CreateCheckoutSession).Methods(http.MethodPost)
	orders.HandleFunc("/confirm-payment", c.Orders.ConfirmPayment).Methods(http.MethodPost)
	orders.HandleFunc("/order/{id}", c.Orders.GetOrderByID).Methods(http.MethodGet)
	orders.Handle("", admin(c.Orders.GetOrders)).Methods(http.MethodGet)
	orders.Handle("/", admin(c.Orders.GetOrders)).Methods(http.MethodGet)
	orders.Handle("/update-order-status/{id}", admin(c.Orders.UpdateOrderStatus)).Methods(http.MethodPatch)
	orders.Handle("/delete-order/{id}", admin(c.Orders.DeleteOrder)).Methods(http.MethodDelete)
	orders.HandleFunc("/{email}", c.Orders.GetOrdersByEmail).Methods(http.MethodGet)

	// Stats routes
	stats := router.PathPrefix("/api/stats").Subrouter()
	stats.HandleFunc("/user-stats/{email}", c.Stats.UserStats).Methods(http.MethodGet)
	stats.Handle("/admin-stats", admin(c.Stats.AdminStats)).Methods(http.MethodGet)
}

// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"go-storefront/config"
	"go-storefront/controllers"
	"go-storefront/events"
	"go-storefront/media"
	"go-storefront/middleware"
	"go-storefront/payments"
	"go-storefront/payments/mock"
	"go-storefront/routes"
	"go-storefront/services"
	"go-storefront/store"
	"go-storefront/store/memory"
	"go-storefront/utils"
)

const serviceName = "storefront"

// backend is the set of repositories the services run on.
type backend struct {
	users    services.UserStore
	products services.ProductStore
	reviews  services.ReviewStore
	orders   services.OrderStore
	tx       services.TxRunner
	health   controllers.Pinger
	close    func(context.Context) error
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found. Proceeding with environment variables.")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(serviceName, cfg.LogLevel)
	if err := run(cfg, logger); err != nil {
		logger.Error("service stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	db, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.close(context.Background()); err != nil {
			logger.Error("failed to close store", slog.String("error", err.Error()))
		}
	}()

	// Session revocation needs Redis; without it logout only clears the cookie.
	var revocations *store.RevocationList
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		revocations = store.NewRevocationList(rdb)
		logger.Info("session revocation enabled", slog.String("addr", cfg.RedisAddr))
	}

	var publisher services.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, logger)
		defer kp.Close()
		publisher = kp
		logger.Info("event publishing enabled", slog.Any("brokers", cfg.KafkaBrokers))
	}

	mailer, err := utils.NewEmailService(utils.MailConfig{
		Provider:      cfg.MailProvider,
		PostmarkToken: cfg.PostmarkAPIToken,
		SendgridKey:   cfg.SendgridAPIKey,
		Sender:        cfg.EmailSender,
	}, logger)
	if err != nil {
		return fmt.Errorf("init mailer: %w", err)
	}

	var uploader media.Uploader = media.Disabled{}
	if cfg.CloudinaryEnabled() {
		cld, err := media.NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, logger)
		if err != nil {
			return fmt.Errorf("init cloudinary: %w", err)
		}
		uploader = cld
	}

	var provider payments.Provider
	switch cfg.PaymentProvider {
	case "stripe":
		provider = payments.NewStripe(payments.StripeConfig{
			SecretKey:  cfg.StripeSecretKey,
			SuccessURL: cfg.CheckoutSuccessURL,
			CancelURL:  cfg.CheckoutCancelURL,
			Currency:   cfg.CheckoutCurrency,
		}, logger)
	default:
		provider = mock.NewProvider()
		logger.Warn("using mock payment provider")
	}

	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)

	var revoker services.SessionRevoker
	var checker middleware.RevocationChecker
	if revocations != nil {
		revoker, checker = revocations, revocations
	}

	userSvc := services.NewUserService(db.users, tokens, revoker, logger)
	productSvc := services.NewProductService(db.products, db.reviews, db.users, db.tx, publisher, cfg.KafkaProductTopic, logger)
	ratingSvc := services.NewRatingService(db.products, db.reviews, logger)
	orderSvc := services.NewOrderService(db.orders, provider, publisher, mailer, cfg.KafkaOrderTopic, logger)
	statsSvc := services.NewStatsService(db.users, db.products, db.reviews, db.orders)

	handler := routes.NewRouter(routes.Controllers{
		Users:    controllers.NewUserController(userSvc, tokens, cfg.CookieSecure, logger),
		Products: controllers.NewProductController(productSvc, logger),
		Reviews:  controllers.NewReviewController(ratingSvc, logger),
		Orders:   controllers.NewOrderController(orderSvc, logger),
		Stats:    controllers.NewStatsController(statsSvc, logger),
		Upload:   controllers.NewUploadController(uploader, logger),
		Health:   controllers.NewHealthController(db.health, logger),
	}, routes.Options{
		Auth:           middleware.NewAuth(tokens, checker, logger),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		LoginRPS:       float64(cfg.LoginRateLimitRPS),
		LoginBurst:     cfg.LoginRateLimitBurst,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server is running",
			slog.String("addr", srv.Addr),
			slog.String("store", cfg.StoreDriver),
			slog.String("payments", provider.Name()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend, error) {
	if cfg.StoreDriver == "memory" {
		mem := memory.New()
		logger.Warn("using in-memory store; data is lost on restart")
		return &backend{
			users:    mem.Users(),
			products: mem.Products(),
			reviews:  mem.Reviews(),
			orders:   mem.Orders(),
			tx:       mem,
			health:   mem,
			close:    func(context.Context) error { return nil },
		}, nil
	}

	client, err := store.ConnectDB(ctx, cfg.MongoURL)
	if err != nil {
		return nil, err
	}
	m := store.NewMongo(client.Database(cfg.MongoDatabase), cfg.MongoTransactions)

	idxCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := m.EnsureIndexes(idxCtx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	logger.Info("MongoDB is connected successfully", slog.String("database", cfg.MongoDatabase))

	db := m.Database()
	return &backend{
		users:    store.NewUserRepository(db),
		products: store.NewProductRepository(db),
		reviews:  store.NewReviewRepository(db),
		orders:   store.NewOrderRepository(db),
		tx:       m,
		health:   m,
		close:    client.Disconnect,
	}, nil
}

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

const defaultJWTSecret = "change-this-to-a-secure-secret"

// Config holds all configuration for the storefront API.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Port        int    `env:"PORT" envDefault:"8000"`

	// Storage
	StoreDriver       string `env:"STORE_DRIVER" envDefault:"mongo"`
	MongoURL          string `env:"MONGO_URL" envDefault:"mongodb://localhost:27017"`
	MongoDatabase     string `env:"MONGO_DATABASE" envDefault:"ecommerce"`
	MongoTransactions bool   `env:"MONGO_TRANSACTIONS" envDefault:"false"`

	// Session
	JWTSecret    string        `env:"JWT_SECRET_KEY" envDefault:"change-this-to-a-secure-secret"`
	JWTExpiry    time.Duration `env:"JWT_EXPIRY" envDefault:"1h"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"true"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`

	// Payments
	PaymentProvider    string `env:"PAYMENT_PROVIDER" envDefault:"stripe"`
	StripeSecretKey    string `env:"STRIPE_SECRET_KEY"`
	CheckoutSuccessURL string `env:"CHECKOUT_SUCCESS_URL" envDefault:"http://localhost:5173/success?session_id={CHECKOUT_SESSION_ID}"`
	CheckoutCancelURL  string `env:"CHECKOUT_CANCEL_URL" envDefault:"http://localhost:5173/cancel"`
	CheckoutCurrency   string `env:"CHECKOUT_CURRENCY" envDefault:"usd"`

	// Image storage
	CloudinaryCloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET"`

	// Redis (session revocation). Empty address disables revocation.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka. No brokers disables event publishing.
	KafkaBrokers      []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaOrderTopic   string   `env:"KAFKA_ORDER_TOPIC" envDefault:"storefront.orders"`
	KafkaProductTopic string   `env:"KAFKA_PRODUCT_TOPIC" envDefault:"storefront.products"`

	// Mail
	MailProvider     string `env:"MAIL_PROVIDER"`
	PostmarkAPIToken string `env:"POSTMARK_API_TOKEN"`
	SendgridAPIKey   string `env:"SENDGRID_API_KEY"`
	EmailSender      string `env:"EMAIL_SENDER" envDefault:"no-reply@localhost"`

	LoginRateLimitRPS   int `env:"LOGIN_RATE_LIMIT_RPS" envDefault:"5"`
	LoginRateLimitBurst int `env:"LOGIN_RATE_LIMIT_BURST" envDefault:"10"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	switch c.StoreDriver {
	case "mongo", "memory":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.PaymentProvider {
	case "stripe":
		if c.StripeSecretKey == "" {
			return fmt.Errorf("STRIPE_SECRET_KEY is required when PAYMENT_PROVIDER is stripe")
		}
	case "mock":
	default:
		return fmt.Errorf("unknown PAYMENT_PROVIDER %q", c.PaymentProvider)
	}

	switch c.MailProvider {
	case "", "postmark", "sendgrid":
	default:
		return fmt.Errorf("unknown MAIL_PROVIDER %q", c.MailProvider)
	}

	if c.JWTExpiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY must be positive")
	}

	// Outside development the signing key must be explicit and strong.
	if !c.IsDevelopment() {
		if c.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET_KEY must be explicitly set in %q mode", c.Environment)
		}
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET_KEY must be at least 32 characters long, got %d", len(c.JWTSecret))
		}
	}

	return nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// CloudinaryEnabled reports whether image upload credentials are present.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

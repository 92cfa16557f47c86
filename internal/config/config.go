package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	Midtrans  MidtransConfig
	Payment   PaymentConfig
	Kafka     KafkaConfig
	Email     EmailConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
	Seed     bool
}

type JWTConfig struct {
	Secret      string
	ExpiryHours time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

// RedisConfig backs the expiry delay queue and the catalog cache. An empty
// Addr selects the in-process fallbacks.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	QueueKey string
	CacheTTL time.Duration
}

type MidtransConfig struct {
	ServerKey    string
	ClientKey    string
	Environment  string
	MerchantName string
}

// IsProduction reports whether charges go to the live Midtrans environment.
func (c MidtransConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

type PaymentConfig struct {
	ExpiryWindow  time.Duration
	SweepInterval time.Duration
	PollInterval  time.Duration
	SweepBatch    int
	JobMaxRetries int
}

type KafkaConfig struct {
	Enabled    bool
	Brokers    []string
	OrderTopic string
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
}

// Enabled reports whether invoices can be mailed.
func (c EmailConfig) Enabled() bool {
	return c.SMTPHost != "" && c.FromEmail != ""
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "brewline-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "brewline")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Asia/Jakarta")
	viper.SetDefault("DB_SEED", false)
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_QUEUE_KEY", "brewline:payment-expiry")
	viper.SetDefault("REDIS_CACHE_TTL_SECONDS", 300)
	viper.SetDefault("MIDTRANS_ENV", "sandbox")
	viper.SetDefault("MIDTRANS_MERCHANT_NAME", "Brewline")
	viper.SetDefault("PAYMENT_EXPIRY_MINUTES", 15)
	viper.SetDefault("PAYMENT_SWEEP_INTERVAL_SECONDS", 300)
	viper.SetDefault("PAYMENT_POLL_INTERVAL_SECONDS", 1)
	viper.SetDefault("PAYMENT_SWEEP_BATCH", 100)
	viper.SetDefault("PAYMENT_JOB_MAX_RETRIES", 5)
	viper.SetDefault("KAFKA_ENABLED", false)
	viper.SetDefault("KAFKA_BROKERS", "localhost:9092")
	viper.SetDefault("KAFKA_ORDER_TOPIC", "orders.new")
	viper.SetDefault("SMTP_PORT", 587)

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
			Seed:     viper.GetBool("DB_SEED"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			QueueKey: viper.GetString("REDIS_QUEUE_KEY"),
			CacheTTL: time.Duration(viper.GetInt("REDIS_CACHE_TTL_SECONDS")) * time.Second,
		},
		Midtrans: MidtransConfig{
			ServerKey:    viper.GetString("MIDTRANS_SERVER_KEY"),
			ClientKey:    viper.GetString("MIDTRANS_CLIENT_KEY"),
			Environment:  viper.GetString("MIDTRANS_ENV"),
			MerchantName: viper.GetString("MIDTRANS_MERCHANT_NAME"),
		},
		Payment: PaymentConfig{
			ExpiryWindow:  time.Duration(viper.GetInt("PAYMENT_EXPIRY_MINUTES")) * time.Minute,
			SweepInterval: time.Duration(viper.GetInt("PAYMENT_SWEEP_INTERVAL_SECONDS")) * time.Second,
			PollInterval:  time.Duration(viper.GetInt("PAYMENT_POLL_INTERVAL_SECONDS")) * time.Second,
			SweepBatch:    viper.GetInt("PAYMENT_SWEEP_BATCH"),
			JobMaxRetries: viper.GetInt("PAYMENT_JOB_MAX_RETRIES"),
		},
		Kafka: KafkaConfig{
			Enabled:    viper.GetBool("KAFKA_ENABLED"),
			Brokers:    viper.GetStringSlice("KAFKA_BROKERS"),
			OrderTopic: viper.GetString("KAFKA_ORDER_TOPIC"),
		},
		Email: EmailConfig{
			SMTPHost:     viper.GetString("SMTP_HOST"),
			SMTPPort:     viper.GetInt("SMTP_PORT"),
			SMTPUsername: viper.GetString("SMTP_USERNAME"),
			SMTPPassword: viper.GetString("SMTP_PASSWORD"),
			FromName:     viper.GetString("SMTP_FROM_NAME"),
			FromEmail:    viper.GetString("SMTP_FROM_EMAIL"),
		},
	}
}

// Validate rejects settings the payment workers cannot run with.
func (c *Config) Validate() error {
	var errs []error
	// An empty key makes notification signatures computable by anyone.
	if c.Midtrans.ServerKey == "" {
		errs = append(errs, errors.New("MIDTRANS_SERVER_KEY is required"))
	}
	if c.Payment.ExpiryWindow <= 0 {
		errs = append(errs, fmt.Errorf("PAYMENT_EXPIRY_MINUTES must be positive, got %s", c.Payment.ExpiryWindow))
	}
	if c.Payment.SweepInterval <= 0 {
		errs = append(errs, fmt.Errorf("PAYMENT_SWEEP_INTERVAL_SECONDS must be positive, got %s", c.Payment.SweepInterval))
	}
	if c.Payment.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("PAYMENT_POLL_INTERVAL_SECONDS must be positive, got %s", c.Payment.PollInterval))
	}
	if c.Payment.SweepBatch <= 0 {
		errs = append(errs, fmt.Errorf("PAYMENT_SWEEP_BATCH must be positive, got %d", c.Payment.SweepBatch))
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is set"))
	}
	return errors.Join(errs...)
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

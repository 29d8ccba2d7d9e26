package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: values that differ between environments (port, DB connection, secrets)
// - default: values common across all environments (timezone, timeouts)
// -----------------------------------------------------------------------------

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	CORS      CORSConfig
	Log       LogConfig
	JWT       JWTConfig
	Payment   PaymentConfig
	Redis     RedisConfig
	Queue     QueueConfig
	Escrow    EscrowConfig
	Rating    RatingConfig
	RateLimit RateLimitConfig
	Metrics   MetricsConfig
}

type ServerConfig struct {
	Port            string        `envconfig:"PORT" required:"true"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"20s"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"10"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

// JWTConfig describes tokens minted by the identity provider. Issuer is checked only when set.
type JWTConfig struct {
	Secret   string        `envconfig:"JWT_SECRET" required:"true"`
	Issuer   string        `envconfig:"JWT_ISSUER"`
	Leeway   time.Duration `envconfig:"JWT_LEEWAY" default:"30s"`
	Duration time.Duration `envconfig:"JWT_DURATION" default:"24h"`
}

type PaymentConfig struct {
	SecretKey         string        `envconfig:"STRIPE_SECRET_KEY" required:"true"`
	WebhookSecret     string        `envconfig:"STRIPE_WEBHOOK_SECRET" required:"true"`
	APIBaseURL        string        `envconfig:"STRIPE_API_BASE_URL" default:"https://api.stripe.com"`
	Currency          string        `envconfig:"PAYMENT_CURRENCY" default:"usd"`
	MaxNetworkRetries int64         `envconfig:"STRIPE_MAX_NETWORK_RETRIES" default:"2"`
	WebhookTolerance  time.Duration `envconfig:"WEBHOOK_TOLERANCE" default:"5m"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type QueueConfig struct {
	Concurrency int `envconfig:"QUEUE_CONCURRENCY" default:"10"`
	MaxRetry    int `envconfig:"QUEUE_MAX_RETRY" default:"8"`
}

type EscrowConfig struct {
	AuthorizationTimeout time.Duration `envconfig:"ESCROW_AUTHORIZATION_TIMEOUT" default:"30m"`
}

type RatingConfig struct {
	Async    bool          `envconfig:"RATING_ASYNC" default:"false"`
	CacheTTL time.Duration `envconfig:"RATING_CACHE_TTL" default:"10m"`
}

type RateLimitConfig struct {
	RPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"20"`
	Burst int     `envconfig:"RATE_LIMIT_BURST" default:"40"`
}

type MetricsConfig struct {
	Enabled bool `envconfig:"METRICS_ENABLED" default:"true"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889",
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433",
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
			MaxConns: 5,
		},
		Log: LogConfig{
			Level:      "error",
			TimeZone:   "UTC",
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		JWT: JWTConfig{
			Secret:   "test-jwt-secret",
			Issuer:   "courier-escrow-test",
			Duration: time.Hour,
		},
		Payment: PaymentConfig{
			SecretKey:         "sk_test_escrow",
			WebhookSecret:     "whsec_test_escrow",
			APIBaseURL:        "http://localhost:12111",
			Currency:          "usd",
			MaxNetworkRetries: 0,
			WebhookTolerance:  5 * time.Minute,
		},
		Redis: RedisConfig{
			Addr: "localhost:16379",
		},
		Queue: QueueConfig{
			Concurrency: 2,
			MaxRetry:    1,
		},
		Escrow: EscrowConfig{
			AuthorizationTimeout: 30 * time.Minute,
		},
		Rating: RatingConfig{
			CacheTTL: time.Minute,
		},
		RateLimit: RateLimitConfig{
			RPS:   1000,
			Burst: 1000,
		},
	}
}

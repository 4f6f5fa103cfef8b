package config

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	BackendNone     = "none"
	BackendMinio    = "minio"
	BackendGCS      = "gcs"
	BackendRabbitMQ = "rabbitmq"
	BackendPubSub   = "pubsub"

	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Env                string   `env:"ENV,default=dev"`
	ServerPort         int      `env:"SERVER_PORT,default=8080"`
	JWTSecret          string   `env:"JWT_SECRET"`
	AllowedOrigins     []string `env:"ALLOWED_ORIGINS,default=http://localhost:5173"`
	RateLimitPerMinute int      `env:"RATE_LIMIT_PER_MINUTE,default=30"`

	Database DatabaseConfig
	Payments PaymentsConfig
	Storage  StorageConfig
	MQ       MQConfig
}

type DatabaseConfig struct {
	Driver string `env:"DB_DRIVER,default=mongo"`
	URI    string `env:"MONGO_URI,default=mongodb://localhost:27017"`
	Name   string `env:"MONGO_DB,default=forum"`
}

type PaymentsConfig struct {
	StripeSecretKey string `env:"STRIPE_SECRET_KEY"`
	Currency        string `env:"PAYMENT_CURRENCY,default=usd"`
}

type StorageConfig struct {
	Backend string `env:"STORAGE_BACKEND,default=none"`
	Minio   MinioConfig
	GCS     GCSConfig
}

type MinioConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET,default=forum-moderation"`
	UseSSL    bool   `env:"MINIO_USE_SSL,default=false"`
}

type GCSConfig struct {
	Bucket          string `env:"GCS_BUCKET"`
	ProjectID       string `env:"GCS_PROJECT_ID"`
	CredentialsFile string `env:"GCS_CREDENTIALS_FILE"`
}

type MQConfig struct {
	Backend  string `env:"MQ_BACKEND,default=none"`
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
}

type RabbitMQConfig struct {
	URL             string `env:"RABBITMQ_URL"`
	QueueDurable    bool   `env:"RABBITMQ_QUEUE_DURABLE,default=true"`
	QueueAutoDelete bool   `env:"RABBITMQ_QUEUE_AUTO_DELETE,default=false"`
	PrefetchCount   int    `env:"RABBITMQ_PREFETCH_COUNT,default=10"`
}

type PubSubConfig struct {
	ProjectID          string `env:"PUBSUB_PROJECT_ID"`
	CredentialsFile    string `env:"PUBSUB_CREDENTIALS_FILE"`
	SubscriptionSuffix string `env:"PUBSUB_SUBSCRIPTION_SUFFIX,default=-sub"`
}

// LoadConfig reads the process environment, loading .env first in dev.
func LoadConfig() (Config, error) {
	if env := os.Getenv("ENV"); env == "" || env == "dev" {
		_ = godotenv.Load()
	}

	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing env vars: %w", err)
	}
	return cfg, nil
}

// IsProduction reports whether cookies must be cross-site and secure.
func (c Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

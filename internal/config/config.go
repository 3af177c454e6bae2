package config

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ndtrung/vietshop/internal/models"
)

type Config struct {
	Env  string
	Port int

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	ESURL      string
	ESUser     string
	ESPassword string

	KafkaBrokers []string

	SessionSecret   string
	SessionCookie   string
	SessionTTLHours int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	StorageBucket  string
	StoragePublic  string

	LogLevel string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	cfg := &Config{
		Env:  envDefault("APP_ENV", "development"),
		Port: envIntDefault("PORT", 8080),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),

		KafkaBrokers: csv(os.Getenv("KAFKA_BROKERS")),

		SessionSecret:   os.Getenv("SESSION_SECRET"),
		SessionCookie:   envDefault("SESSION_COOKIE", "session"),
		SessionTTLHours: envIntDefault("SESSION_TTL_HOURS", 7*24),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioUseSSL:    envDefault("MINIO_USE_SSL", "false") == "true",
		StorageBucket:  envDefault("STORAGE_BUCKET", "shop-images"),
		StoragePublic:  os.Getenv("STORAGE_PUBLIC_URL"),

		LogLevel: envDefault("LOG_LEVEL", "info"),
	}

	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("missing required env SESSION_SECRET")
	}

	return cfg, nil
}

func (c *Config) Production() bool {
	return c.Env == "production"
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB: %w", err)
	}
	configurePool(sqlDB)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Shop{},
		&models.Product{},
		&models.CartItem{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.ShopRequest{},
		&models.Notification{},
		&models.RecentSearch{},
	); err != nil {
		return fmt.Errorf("running migration: %w", err)
	}
	return nil
}

func configurePool(sqlDB *sql.DB) {
	const (
		maxOpenConns    = 20
		maxIdleConns    = 10
		connMaxLifetime = 30 * time.Minute
		connMaxIdleTime = 5 * time.Minute
	)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
}

func csv(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

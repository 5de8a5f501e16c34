package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	pkgcfg "github.com/Skotchmaster/storefront/pkg/config"
)

type StorageConfig struct {
	Provider  string
	LocalDir  string
	PublicURL string

	S3Bucket    string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string
}

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DatabaseURL string

	JWTAccessSecret  []byte
	JWTRefreshSecret []byte
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration

	MaxCartQuantity  int
	MaxProductImages int

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	CategoryCacheTTL time.Duration

	Storage StorageConfig

	CSRFEnabled      bool
	Seed             bool
	SeedPassword     string
	TokenCleanupSpec string
}

// LoadEnv reads the first .env file found; a missing file is not an error.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return godotenv.Load(p)
		}
	}
	return nil
}

func Load() Config {
	return Config{
		ServiceName: pkgcfg.EnvDefault("SERVICE_NAME", "storefront"),
		ServerPort:  pkgcfg.EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    pkgcfg.EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: databaseURL(),

		JWTAccessSecret:  []byte(os.Getenv("JWT_SECRET")),
		JWTRefreshSecret: []byte(os.Getenv("JWT_REFRESH_SECRET")),
		AccessTokenTTL:   pkgcfg.EnvDurationDefault("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:  pkgcfg.EnvDurationDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		MaxCartQuantity:  pkgcfg.EnvIntDefault("MAX_QUANTITY", 10),
		MaxProductImages: pkgcfg.EnvIntDefault("MAX_PRODUCT_IMAGES", 5),

		KafkaBrokers: pkgcfg.CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    pkgcfg.EnvDefault("ES_INDEX", "products"),

		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          pkgcfg.EnvIntDefault("REDIS_DB", 0),
		CategoryCacheTTL: pkgcfg.EnvDurationDefault("CATEGORY_CACHE_TTL", 10*time.Minute),

		Storage: StorageConfig{
			Provider:    pkgcfg.EnvDefault("STORAGE_PROVIDER", "local"),
			LocalDir:    pkgcfg.EnvDefault("STORAGE_LOCAL_DIR", "uploads"),
			PublicURL:   pkgcfg.EnvDefault("STORAGE_PUBLIC_URL", "/uploads"),
			S3Bucket:    os.Getenv("S3_BUCKET"),
			S3Region:    pkgcfg.EnvDefault("S3_REGION", "us-east-1"),
			S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
			S3SecretKey: os.Getenv("S3_SECRET_KEY"),
			S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		},

		CSRFEnabled:      pkgcfg.EnvBoolDefault("CSRF_ENABLED", false),
		Seed:             pkgcfg.EnvBoolDefault("SEED", false),
		SeedPassword:     pkgcfg.EnvDefault("SEED_PASSWORD", "changeme123"),
		TokenCleanupSpec: pkgcfg.EnvDefault("TOKEN_CLEANUP_SPEC", "@hourly"),
	}
}

// databaseURL prefers DATABASE_URL and otherwise assembles a DSN from DB_* parts.
func databaseURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}
	host := os.Getenv("DB_HOST")
	if host == "" {
		return ""
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host,
		pkgcfg.EnvDefault("DB_PORT", "5432"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		pkgcfg.EnvDefault("DB_SSLMODE", "disable"),
	)
}

func (c Config) Validate() error {
	var r pkgcfg.Required
	r.String(c.DatabaseURL, "DATABASE_URL")
	r.Bytes(c.JWTAccessSecret, "JWT_SECRET")
	r.Bytes(c.JWTRefreshSecret, "JWT_REFRESH_SECRET")
	if c.Storage.Provider == "s3" {
		r.String(c.Storage.S3Bucket, "S3_BUCKET")
	}
	return r.Err()
}

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Port                    string
	Env                     string
	FirebaseCredentialsPath string
	PostgresConnStr         string
	MongoURI                string
	MongoDatabase           string
	MetricsPort             string
	JWTSecret               string

	LogLevel      string
	LogFile       string
	LogToStdout   bool
	LogFormatJSON bool

	StorageBackend   string
	StorageBucket    string
	StoragePublicURL string
	S3Region         string
	S3Endpoint       string
	MinioEndpoint    string
	MinioAccessKey   string
	MinioSecretKey   string
	MinioUseSSL      bool

	RealtimeBackend string
	RedisAddr       string
	RedisPassword   string
	NATSURL         string

	DispatchTimeout time.Duration
}

// Load reads the process environment, after merging a .env file when one
// is present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using process environment")
	}

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "inkwell"),
		MetricsPort:             getEnv("METRICS_PORT", "9090"),
		JWTSecret:               getEnv("JWT_SECRET", ""),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       getEnv("LOG_FILE", ""),
		LogToStdout:   getBool("LOG_TO_STDOUT", true),
		LogFormatJSON: getBool("LOG_FORMAT_JSON", false),

		StorageBackend:   getEnv("STORAGE_BACKEND", "gridfs"),
		StorageBucket:    getEnv("STORAGE_BUCKET", "inkwell"),
		StoragePublicURL: getEnv("STORAGE_PUBLIC_URL", "/api/v1/media"),
		S3Region:         getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:       getEnv("S3_ENDPOINT", ""),
		MinioEndpoint:    getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey:   getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:   getEnv("MINIO_SECRET_KEY", ""),
		MinioUseSSL:      getBool("MINIO_USE_SSL", false),

		RealtimeBackend: getEnv("REALTIME_BACKEND", "none"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		NATSURL:         getEnv("NATS_URL", "nats://localhost:4222"),

		DispatchTimeout: getDuration("DISPATCH_TIMEOUT", 5*time.Second),
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

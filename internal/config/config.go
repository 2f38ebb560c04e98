package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all the configuration for the application.
type Config struct {
	Env         string `yaml:"env" env:"ENV" env-default:"production"`
	HTTPServer  `yaml:"http_server"`
	Database    `yaml:"database"`
	Redis       `yaml:"redis"`
	Tracking    `yaml:"tracking"`
	ClickLogger `yaml:"click_logger"`
	Webhook     `yaml:"webhook"`
	Logger      `yaml:"logger"`
}

// HTTPServer holds HTTP listener configuration.
type HTTPServer struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"30s"`
	CORSOrigins     []string      `yaml:"cors_origins" env:"HTTP_CORS_ORIGINS" env-separator:"," env-default:"*"`
}

// Database holds storage configuration. Driver "memory" keeps everything in process.
type Database struct {
	Driver          string `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	Host            string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User            string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password        string `yaml:"password" env:"DB_PASSWORD"`
	DBName          string `yaml:"dbname" env:"DB_NAME" env-default:"vlinks"`
	SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	Timezone        string `yaml:"timezone" env:"DB_TIMEZONE" env-default:"UTC"`
	MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
	SlowThreshold   string `yaml:"slow_threshold" env:"DB_SLOW_THRESHOLD" env-default:"200ms"`
	AutoMigrate     bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"true"`
	SeedData        bool   `yaml:"seed_data" env:"DB_SEED_DATA" env-default:"false"`
}

// Redis holds the optional link resolution cache. Empty Addr disables it.
type Redis struct {
	Addr         string        `yaml:"addr" env:"REDIS_ADDR"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB           int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	LinkCacheTTL time.Duration `yaml:"link_cache_ttl" env:"REDIS_LINK_CACHE_TTL" env-default:"5m"`
}

// Tracking holds click enrichment configuration.
type Tracking struct {
	IPHashSecret  string `yaml:"ip_hash_secret" env:"IP_HASH_SECRET" env-required:"true"`
	GeoIPPath     string `yaml:"geoip_db_path" env:"GEOIP_DB_PATH"`
	UARegexesPath string `yaml:"ua_regexes_path" env:"UA_REGEXES_PATH" env-default:"assets/regexes.yaml"`
}

// ClickLogger holds the asynchronous click writer configuration.
type ClickLogger struct {
	Workers         int           `yaml:"workers" env:"CLICK_WORKERS" env-default:"3"`
	BufferSize      int           `yaml:"buffer_size" env:"CLICK_BUFFER_SIZE" env-default:"1000"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"CLICK_WRITE_TIMEOUT" env-default:"5s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"CLICK_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// Webhook holds CRM webhook configuration. The shared secret itself is a setting.
type Webhook struct {
	RateLimit             string `yaml:"rate_limit" env:"WEBHOOK_RATE_LIMIT" env-default:"120-M"`
	MaxBodyBytes          int64  `yaml:"max_body_bytes" env:"WEBHOOK_MAX_BODY_BYTES" env-default:"1048576"`
	SkipOrphanTransitions bool   `yaml:"skip_orphan_transitions" env:"WEBHOOK_SKIP_ORPHAN_TRANSITIONS" env-default:"false"`
	LogRetentionDays      int    `yaml:"log_retention_days" env:"WEBHOOK_LOG_RETENTION_DAYS" env-default:"90"`
	RetentionSchedule     string `yaml:"retention_schedule" env:"WEBHOOK_RETENTION_SCHEDULE" env-default:"0 3 * * *"`
}

// Logger holds the optional rotating log file.
type Logger struct {
	FilePath   string `yaml:"file_path" env:"LOG_FILE_PATH"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"LOG_MAX_SIZE_MB" env-default:"100"`
	MaxBackups int    `yaml:"max_backups" env:"LOG_MAX_BACKUPS" env-default:"5"`
	MaxAgeDays int    `yaml:"max_age_days" env:"LOG_MAX_AGE_DAYS" env-default:"30"`
}

// MustLoad loads the application configuration.
func MustLoad() *Config {
	// Try to load .env file (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment variables")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/local.yml" // default path
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return cfg
}

// Load reads the config file at path, or only the environment if the file is absent.
func Load(path string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	log.Println("Config file not found, using environment variables only")
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Square        SquareConfig
	Catalog       CatalogConfig
	Fulfillment   FulfillmentConfig
	CORS          CORSConfig
	AuthRateLimit AuthRateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WINECLUB_APP_ENV" required:"true"`
	Port         string `envconfig:"WINECLUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WINECLUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WINECLUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"WINECLUB_DB_DSN"`
	Driver string `envconfig:"WINECLUB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WINECLUB_DB_HOST"`
	LegacyPort     int    `envconfig:"WINECLUB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WINECLUB_DB_USER"`
	LegacyPassword string `envconfig:"WINECLUB_DB_PASSWORD"`
	LegacyName     string `envconfig:"WINECLUB_DB_NAME"`
	LegacySSLMode  string `envconfig:"WINECLUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WINECLUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WINECLUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WINECLUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WINECLUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"WINECLUB_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WINECLUB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"WINECLUB_REDIS_ADDR"`
	Password     string        `envconfig:"WINECLUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"WINECLUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WINECLUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WINECLUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WINECLUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WINECLUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WINECLUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"WINECLUB_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"WINECLUB_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"WINECLUB_JWT_EXPIRATION_MINUTES" required:"true"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"WINECLUB_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"WINECLUB_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"WINECLUB_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"WINECLUB_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"WINECLUB_ARGON_KEY_LEN" default:"32"`
}

// SquareConfig carries the upstream commerce credentials. Business logic receives
// this struct explicitly; nothing below the HTTP layer reads the environment.
type SquareConfig struct {
	AccessToken   string `envconfig:"WINECLUB_SQUARE_ACCESS_TOKEN"`
	Env           string `envconfig:"WINECLUB_SQUARE_ENV" default:"sandbox"`
	LocationID    string `envconfig:"WINECLUB_SQUARE_LOCATION_ID"`
	WebhookSecret string `envconfig:"WINECLUB_SQUARE_WEBHOOK_SECRET"`
}

// Environment returns the normalized Square environment (sandbox/production).
func (s SquareConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

// Configured reports whether upstream credentials are present. Absence is the
// demo-mode signal, never a startup failure.
func (s SquareConfig) Configured() bool {
	return strings.TrimSpace(s.AccessToken) != ""
}

type CatalogConfig struct {
	FetchTimeout    time.Duration `envconfig:"WINECLUB_CATALOG_FETCH_TIMEOUT" default:"10s"`
	DefaultCategory string        `envconfig:"WINECLUB_CATALOG_DEFAULT_CATEGORY" default:"all"`
}

type FulfillmentConfig struct {
	BoxCapacity int `envconfig:"WINECLUB_FULFILLMENT_BOX_CAPACITY" default:"12"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"WINECLUB_CORS_ALLOWED_ORIGINS" default:"*"`
}

// AuthRateLimitConfig throttles the login endpoint. Zero window disables it.
type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"WINECLUB_LOGIN_RATE_WINDOW" default:"1m"`
	LoginIPLimit    int           `envconfig:"WINECLUB_LOGIN_RATE_IP_LIMIT" default:"10"`
	LoginEmailLimit int           `envconfig:"WINECLUB_LOGIN_RATE_EMAIL_LIMIT" default:"5"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

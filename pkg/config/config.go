package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
	Storage  StorageConfig
	Uploads  UploadsConfig
	Stripe   StripeConfig
	RateLim  AuthRateLimitConfig
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
	Env          string   `envconfig:"BOUTIQUE_APP_ENV" required:"true"`
	Port         string   `envconfig:"BOUTIQUE_APP_PORT" default:"5000"`
	LogLevel     string   `envconfig:"BOUTIQUE_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"BOUTIQUE_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"BOUTIQUE_CORS_ORIGINS"`
}

// AuthRateLimitConfig throttles the credential endpoints per IP and per email.
type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"BOUTIQUE_RL_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit       int           `envconfig:"BOUTIQUE_RL_LOGIN_IP_LIMIT" default:"20"`
	LoginEmailLimit    int           `envconfig:"BOUTIQUE_RL_LOGIN_EMAIL_LIMIT" default:"5"`
	RegisterWindow     time.Duration `envconfig:"BOUTIQUE_RL_REGISTER_WINDOW" default:"1h"`
	RegisterIPLimit    int           `envconfig:"BOUTIQUE_RL_REGISTER_IP_LIMIT" default:"30"`
	RegisterEmailLimit int           `envconfig:"BOUTIQUE_RL_REGISTER_EMAIL_LIMIT" default:"3"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BOUTIQUE_DB_DSN"`
	Driver string `envconfig:"BOUTIQUE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"BOUTIQUE_DB_HOST"`
	Port     int    `envconfig:"BOUTIQUE_DB_PORT" default:"5432"`
	User     string `envconfig:"BOUTIQUE_DB_USER"`
	Password string `envconfig:"BOUTIQUE_DB_PASSWORD"`
	Name     string `envconfig:"BOUTIQUE_DB_NAME"`
	SSLMode  string `envconfig:"BOUTIQUE_DB_SSLMODE" default:"disable"`

	AutoMigrate bool `envconfig:"BOUTIQUE_DB_AUTO_MIGRATE" default:"false"`

	MaxOpenConns    int           `envconfig:"BOUTIQUE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BOUTIQUE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BOUTIQUE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BOUTIQUE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BOUTIQUE_REDIS_URL"`
	Address      string        `envconfig:"BOUTIQUE_REDIS_ADDR"`
	Password     string        `envconfig:"BOUTIQUE_REDIS_PASSWORD"`
	DB           int           `envconfig:"BOUTIQUE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BOUTIQUE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BOUTIQUE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BOUTIQUE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BOUTIQUE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BOUTIQUE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BOUTIQUE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BOUTIQUE_JWT_ISSUER" default:"boutique2v"`
	ExpirationMinutes int    `envconfig:"BOUTIQUE_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// PasswordConfig carries the Argon2id parameters embedded into each hash.
type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"BOUTIQUE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"BOUTIQUE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"BOUTIQUE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"BOUTIQUE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"BOUTIQUE_ARGON_KEY_LEN" default:"32"`
}

// StorageConfig controls the on-disk artifact store that the static file
// server fronts.
type StorageConfig struct {
	Root          string `envconfig:"BOUTIQUE_STORAGE_ROOT" default:"uploads"`
	PublicBaseURL string `envconfig:"BOUTIQUE_STORAGE_PUBLIC_BASE_URL" default:"/uploads"`
}

type UploadsConfig struct {
	MaxUploadMB int `envconfig:"BOUTIQUE_MAX_UPLOAD_MB" default:"10"`
	MaxFiles    int `envconfig:"BOUTIQUE_MAX_UPLOAD_FILES" default:"8"`
}

type StripeConfig struct {
	APIKey        string `envconfig:"BOUTIQUE_STRIPE_API_KEY"`
	WebhookSecret string `envconfig:"BOUTIQUE_STRIPE_WEBHOOK_SECRET"`
	Env           string `envconfig:"BOUTIQUE_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if strings.EqualFold(db.Driver, DriverSQLite) {
		db.DSN = "file::memory:?cache=shared"
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

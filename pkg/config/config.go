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
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Checkout      CheckoutConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Mailer        MailerConfig
	PDF           PDFConfig
	Maps          MapsConfig
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
	Env          string `envconfig:"LCDT_APP_ENV" required:"true"`
	Port         string `envconfig:"LCDT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LCDT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LCDT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LCDT_DB_DSN"`
	Driver string `envconfig:"LCDT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LCDT_DB_HOST"`
	LegacyPort     int    `envconfig:"LCDT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LCDT_DB_USER"`
	LegacyPassword string `envconfig:"LCDT_DB_PASSWORD"`
	LegacyName     string `envconfig:"LCDT_DB_NAME"`
	LegacySSLMode  string `envconfig:"LCDT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LCDT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LCDT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LCDT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LCDT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LCDT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LCDT_REDIS_ADDR"`
	Password     string        `envconfig:"LCDT_REDIS_PASSWORD"`
	DB           int           `envconfig:"LCDT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LCDT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LCDT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LCDT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LCDT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LCDT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"LCDT_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"LCDT_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"LCDT_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"LCDT_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh session lifetime.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"LCDT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LCDT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"LCDT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"LCDT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LCDT_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"LCDT_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"LCDT_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"LCDT_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"LCDT_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"LCDT_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"LCDT_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"LCDT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"LCDT_AUTO_MIGRATE" default:"false"`
}

// CheckoutConfig tunes the order-creation workflow.
type CheckoutConfig struct {
	Timezone           string        `envconfig:"LCDT_CHECKOUT_TIMEZONE" default:"Europe/Paris"`
	StockLookaheadDays int           `envconfig:"LCDT_CHECKOUT_STOCK_LOOKAHEAD_DAYS" default:"7"`
	TxTimeout          time.Duration `envconfig:"LCDT_CHECKOUT_TX_TIMEOUT" default:"10s"`
	SettingsCacheTTL   time.Duration `envconfig:"LCDT_SETTINGS_CACHE_TTL" default:"30s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"LCDT_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"LCDT_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"LCDT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"LCDT_PUBSUB_ORDERS_TOPIC" default:"lcdt-order-events"`
	OrdersSubscription string `envconfig:"LCDT_PUBSUB_ORDERS_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"LCDT_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"LCDT_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"LCDT_OUTBOX_MAX_ATTEMPTS" default:"10"`
	IdempotencyTTL time.Duration `envconfig:"LCDT_OUTBOX_IDEMPOTENCY_TTL" default:"720h"`
}

type MailerConfig struct {
	APIURL      string `envconfig:"LCDT_MAILER_API_URL"`
	APIKey      string `envconfig:"LCDT_MAILER_API_KEY"`
	DefaultFrom string `envconfig:"LCDT_MAILER_FROM_EMAIL" default:"commandes@cantine.example"`
}

type PDFConfig struct {
	RendererURL string `envconfig:"LCDT_PDF_RENDERER_URL"`
	OutputDir   string `envconfig:"LCDT_PDF_OUTPUT_DIR" default:"var/invoices"`
}

// MapsConfig configures the places autocomplete client. Optional; address
// suggestion endpoints answer 503 without it.
type MapsConfig struct {
	APIKey  string `envconfig:"LCDT_MAPS_API_KEY"`
	BaseURL string `envconfig:"LCDT_MAPS_BASE_URL"`
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

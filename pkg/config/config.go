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
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Seed          SeedConfig
	Orders        OrdersConfig
	Idempotency   IdempotencyConfig
	Cron          CronConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
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
	Env          string `envconfig:"LITTLEMIJA_APP_ENV" required:"true"`
	Port         string `envconfig:"LITTLEMIJA_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"LITTLEMIJA_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"LITTLEMIJA_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"LITTLEMIJA_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"LITTLEMIJA_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AllowedOrigins splits the comma separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	origins := []string{}
	for _, origin := range strings.Split(a.CORSOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

type ServiceConfig struct {
	Kind string `envconfig:"LITTLEMIJA_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"LITTLEMIJA_DB_DSN"`
	Driver string `envconfig:"LITTLEMIJA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LITTLEMIJA_DB_HOST"`
	LegacyPort     int    `envconfig:"LITTLEMIJA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LITTLEMIJA_DB_USER"`
	LegacyPassword string `envconfig:"LITTLEMIJA_DB_PASSWORD"`
	LegacyName     string `envconfig:"LITTLEMIJA_DB_NAME"`
	LegacySSLMode  string `envconfig:"LITTLEMIJA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LITTLEMIJA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LITTLEMIJA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LITTLEMIJA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LITTLEMIJA_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// SlowQueryThreshold logs statements slower than this at warn. Zero disables it.
	SlowQueryThreshold time.Duration `envconfig:"LITTLEMIJA_DB_SLOW_QUERY_THRESHOLD" default:"250ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LITTLEMIJA_REDIS_URL"`
	Address      string        `envconfig:"LITTLEMIJA_REDIS_ADDR"`
	Password     string        `envconfig:"LITTLEMIJA_REDIS_PASSWORD"`
	DB           int           `envconfig:"LITTLEMIJA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LITTLEMIJA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LITTLEMIJA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LITTLEMIJA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LITTLEMIJA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LITTLEMIJA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"LITTLEMIJA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"LITTLEMIJA_JWT_ISSUER" default:"littlemija"`
	ExpirationMinutes int    `envconfig:"LITTLEMIJA_JWT_EXPIRATION_MINUTES" default:"720"`
}

// TTL returns the access token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"LITTLEMIJA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LITTLEMIJA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"LITTLEMIJA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"LITTLEMIJA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LITTLEMIJA_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"LITTLEMIJA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit  int           `envconfig:"LITTLEMIJA_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit     int           `envconfig:"LITTLEMIJA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignupWindow     time.Duration `envconfig:"LITTLEMIJA_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupEmailLimit int           `envconfig:"LITTLEMIJA_AUTH_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
	SignupIPLimit    int           `envconfig:"LITTLEMIJA_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"LITTLEMIJA_AUTO_MIGRATE" default:"false"`
	SeedUsers   bool `envconfig:"LITTLEMIJA_SEED_DEFAULT_USERS" default:"false"`
}

type SeedConfig struct {
	MasterEmail      string `envconfig:"LITTLEMIJA_SEED_MASTER_EMAIL" default:"admin@shop.com"`
	MasterPassword   string `envconfig:"LITTLEMIJA_SEED_MASTER_PASSWORD" default:"admin123"`
	SecondEmail      string `envconfig:"LITTLEMIJA_SEED_SECOND_EMAIL" default:"warehouse@shop.com"`
	SecondPassword   string `envconfig:"LITTLEMIJA_SEED_SECOND_PASSWORD" default:"warehouse123"`
	CustomerEmail    string `envconfig:"LITTLEMIJA_SEED_CUSTOMER_EMAIL" default:"customer@shop.com"`
	CustomerPassword string `envconfig:"LITTLEMIJA_SEED_CUSTOMER_PASSWORD" default:"customer123"`
}

type OrdersConfig struct {
	SweepParallelism int `envconfig:"LITTLEMIJA_ORDERS_SWEEP_PARALLELISM" default:"4"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"LITTLEMIJA_IDEMPOTENCY_TTL" default:"24h"`
}

type CronConfig struct {
	Interval        time.Duration `envconfig:"LITTLEMIJA_CRON_INTERVAL" default:"5m"`
	LockTTL         time.Duration `envconfig:"LITTLEMIJA_CRON_LOCK_TTL" default:"10m"`
	OutboxRetention time.Duration `envconfig:"LITTLEMIJA_CRON_OUTBOX_RETENTION" default:"720h"`
	RetentionEvery  time.Duration `envconfig:"LITTLEMIJA_CRON_RETENTION_EVERY" default:"24h"`
	// MetricsAddr exposes /metrics for the worker when set, e.g. ":9102".
	MetricsAddr string `envconfig:"LITTLEMIJA_CRON_METRICS_ADDR"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"LITTLEMIJA_GCP_PROJECT_ID"`
	ApplicationCredentials string `envconfig:"LITTLEMIJA_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic string `envconfig:"LITTLEMIJA_PUBSUB_ORDERS_TOPIC" default:"littlemija-order-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"LITTLEMIJA_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"LITTLEMIJA_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"LITTLEMIJA_OUTBOX_MAX_ATTEMPTS" default:"10"`
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

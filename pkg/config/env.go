package config

// EnvPrefix is handed to envconfig; every field also carries its full variable name.
const EnvPrefix = "LITTLEMIJA"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv     = "LITTLEMIJA_APP_ENV"
	EnvPort       = "LITTLEMIJA_APP_PORT"
	EnvLogLevel   = "LITTLEMIJA_LOG_LEVEL"
	EnvLogFormat  = "LITTLEMIJA_LOG_FORMAT"
	EnvDBDSN      = "LITTLEMIJA_DB_DSN"
	EnvDBHost     = "LITTLEMIJA_DB_HOST"
	EnvDBPort     = "LITTLEMIJA_DB_PORT"
	EnvDBUser     = "LITTLEMIJA_DB_USER"
	EnvDBPassword = "LITTLEMIJA_DB_PASSWORD"
	EnvDBName     = "LITTLEMIJA_DB_NAME"
	EnvRedisURL   = "LITTLEMIJA_REDIS_URL"
	EnvJWTSecret  = "LITTLEMIJA_JWT_SECRET"
	EnvJWTIssuer  = "LITTLEMIJA_JWT_ISSUER"
	EnvJWTExpMins = "LITTLEMIJA_JWT_EXPIRATION_MINUTES"

	EnvSweepParallelism = "LITTLEMIJA_ORDERS_SWEEP_PARALLELISM"
	EnvSeedUsers        = "LITTLEMIJA_SEED_DEFAULT_USERS"
	EnvPubSubOrders     = "LITTLEMIJA_PUBSUB_ORDERS_TOPIC"
	EnvGCPProjectID     = "LITTLEMIJA_GCP_PROJECT_ID"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

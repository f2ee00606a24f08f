package config

// EnvPrefix is handed to envconfig; every field carries an explicit key so
// the prefix only matters for untagged fields.
const EnvPrefix = "PULSE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv         = "PULSE_APP_ENV"
	EnvPort           = "PULSE_APP_PORT"
	EnvLogLevel       = "PULSE_LOG_LEVEL"
	EnvDBDSN          = "PULSE_DB_DSN"
	EnvDBHost         = "PULSE_DB_HOST"
	EnvDBPort         = "PULSE_DB_PORT"
	EnvDBUser         = "PULSE_DB_USER"
	EnvDBPassword     = "PULSE_DB_PASSWORD"
	EnvDBName         = "PULSE_DB_NAME"
	EnvRedisURL       = "PULSE_REDIS_URL"
	EnvCacheTTL       = "PULSE_CACHE_TTL"
	EnvGeoURL         = "PULSE_GEO_URL"
	EnvGeoProperty    = "PULSE_GEO_FEATURE_PROPERTY"
	EnvAllowOrigins   = "PULSE_HTTP_ALLOWED_ORIGINS"
	EnvWarmerInterval = "PULSE_WARMER_INTERVAL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

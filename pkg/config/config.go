package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	Cache   CacheConfig
	Geo     GeoConfig
	HTTP    HTTPConfig
	Metrics MetricsConfig
	Warmer  WarmerConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if cfg.Cache.TTL <= 0 {
		return nil, fmt.Errorf("%s must be positive", EnvCacheTTL)
	}
	if cfg.Warmer.Interval <= 0 || cfg.Warmer.Interval >= cfg.Cache.TTL {
		return nil, fmt.Errorf("%s must be positive and shorter than %s", EnvWarmerInterval, EnvCacheTTL)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PULSE_APP_ENV" required:"true"`
	Port         string `envconfig:"PULSE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"PULSE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PULSE_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"PULSE_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"PULSE_DB_DSN"`

	LegacyHost     string `envconfig:"PULSE_DB_HOST"`
	LegacyPort     int    `envconfig:"PULSE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PULSE_DB_USER"`
	LegacyPassword string `envconfig:"PULSE_DB_PASSWORD"`
	LegacyName     string `envconfig:"PULSE_DB_NAME"`
	LegacySSLMode  string `envconfig:"PULSE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PULSE_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"PULSE_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"PULSE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PULSE_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// SlowQueryThreshold logs statements slower than this; 0 disables it.
	SlowQueryThreshold time.Duration `envconfig:"PULSE_DB_SLOW_QUERY_THRESHOLD" default:"500ms"`
}

// RedisConfig is optional: with neither URL nor address set the shared
// cache tier is disabled and every replica caches on its own.
type RedisConfig struct {
	URL          string        `envconfig:"PULSE_REDIS_URL"`
	Address      string        `envconfig:"PULSE_REDIS_ADDR"`
	Password     string        `envconfig:"PULSE_REDIS_PASSWORD"`
	DB           int           `envconfig:"PULSE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PULSE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PULSE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PULSE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PULSE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PULSE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type CacheConfig struct {
	TTL time.Duration `envconfig:"PULSE_CACHE_TTL" default:"600s"`
}

type GeoConfig struct {
	URL             string        `envconfig:"PULSE_GEO_URL" default:"https://gist.githubusercontent.com/jbrobst/56c13bbbf9d97d187fea01ca62ea5112/raw/e388c4cae20aa53cb5090210a42ebb9b765c0a36/india_states.geojson"`
	FeatureProperty string        `envconfig:"PULSE_GEO_FEATURE_PROPERTY" default:"ST_NM"`
	Timeout         time.Duration `envconfig:"PULSE_GEO_TIMEOUT" default:"15s"`
}

type HTTPConfig struct {
	AllowedOrigins []string      `envconfig:"PULSE_HTTP_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:8501"`
	ReadTimeout    time.Duration `envconfig:"PULSE_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout   time.Duration `envconfig:"PULSE_HTTP_WRITE_TIMEOUT" default:"30s"`
}

// WarmerConfig drives the cache-warmer worker. Tables is empty to warm
// every table.
type WarmerConfig struct {
	Interval time.Duration `envconfig:"PULSE_WARMER_INTERVAL" default:"5m"`
	Tables   []string      `envconfig:"PULSE_WARMER_TABLES"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"PULSE_METRICS_ENABLED" default:"true"`
	Path    string `envconfig:"PULSE_METRICS_PATH" default:"/metrics"`
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

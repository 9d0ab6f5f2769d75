package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Cart         CartConfig
	Business     BusinessConfig
	Delivery     DeliveryConfig
	DB           DBConfig
	Redis        RedisConfig
	Session      SessionConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	BigQuery     BigQueryConfig
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
	Env          string `envconfig:"ARK_APP_ENV" required:"true"`
	Port         string `envconfig:"ARK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ARK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ARK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// CartConfig carries the cart limits and pricing thresholds. Amounts are in
// whole hryvnias, matching the menu prices.
type CartConfig struct {
	MinOrderAmount        int           `envconfig:"ARK_CART_MIN_ORDER_AMOUNT" default:"150"`
	DeliveryFee           int           `envconfig:"ARK_CART_DELIVERY_FEE" default:"30"`
	FreeDeliveryThreshold int           `envconfig:"ARK_CART_FREE_DELIVERY_THRESHOLD" default:"300"`
	MaxItems              int           `envconfig:"ARK_CART_MAX_ITEMS" default:"50"`
	MaxPerLine            int           `envconfig:"ARK_CART_MAX_PER_LINE" default:"10"`
	KeyPrefix             string        `envconfig:"ARK_CART_KEY_PREFIX" default:"cart"`
	AutoOpenDelay         time.Duration `envconfig:"ARK_CART_AUTO_OPEN_DELAY" default:"1s"`
	ResyncWindow          time.Duration `envconfig:"ARK_CART_RESYNC_WINDOW" default:"30m"`
	DirtyAfter            time.Duration `envconfig:"ARK_CART_DIRTY_AFTER" default:"5m"`
}

type BusinessConfig struct {
	Name      string `envconfig:"ARK_BUSINESS_NAME" default:"Ковчег Ноя"`
	Phone     string `envconfig:"ARK_BUSINESS_PHONE" default:"+380671234567"`
	Phone2    string `envconfig:"ARK_BUSINESS_PHONE2" default:"+380501234567"`
	OpenTime  string `envconfig:"ARK_BUSINESS_OPEN" default:"09:00"`
	CloseTime string `envconfig:"ARK_BUSINESS_CLOSE" default:"23:00"`
}

type DeliveryConfig struct {
	BaseTimeMinutes int `envconfig:"ARK_DELIVERY_BASE_TIME_MINUTES" default:"30"`
	MaxTimeMinutes  int `envconfig:"ARK_DELIVERY_MAX_TIME_MINUTES" default:"45"`
}

type DBConfig struct {
	DSN    string `envconfig:"ARK_DB_DSN"`
	Driver string `envconfig:"ARK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ARK_DB_HOST"`
	LegacyPort     int    `envconfig:"ARK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ARK_DB_USER"`
	LegacyPassword string `envconfig:"ARK_DB_PASSWORD"`
	LegacyName     string `envconfig:"ARK_DB_NAME"`
	LegacySSLMode  string `envconfig:"ARK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ARK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ARK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ARK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ARK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ARK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ARK_REDIS_ADDR"`
	Password     string        `envconfig:"ARK_REDIS_PASSWORD"`
	DB           int           `envconfig:"ARK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ARK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ARK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ARK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ARK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ARK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SessionConfig configures the guest cart-session tokens.
type SessionConfig struct {
	Secret     string `envconfig:"ARK_SESSION_SECRET" required:"true"`
	Issuer     string `envconfig:"ARK_SESSION_ISSUER" default:"ark-ordering"`
	TTLMinutes int    `envconfig:"ARK_SESSION_TTL_MINUTES" default:"43200"`
}

// TTL returns the session token lifetime configured in minutes.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLMinutes <= 0 {
		return 0
	}
	return time.Duration(s.TTLMinutes) * time.Minute
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ARK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ARK_AUTO_MIGRATE" default:"false"`
	SeedMenu    bool `envconfig:"ARK_SEED_MENU" default:"true"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"ARK_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"ARK_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"ARK_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	TelemetryTopic        string `envconfig:"ARK_PUBSUB_TELEMETRY_TOPIC" default:"ark-telemetry-events"`
	TelemetrySubscription string `envconfig:"ARK_PUBSUB_TELEMETRY_SUBSCRIPTION"`
}

type BigQueryConfig struct {
	Dataset     string `envconfig:"ARK_BIGQUERY_DATASET" default:"ordering"`
	EventsTable string `envconfig:"ARK_BIGQUERY_EVENTS_TABLE" default:"telemetry_events"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" || strings.EqualFold(db.Driver, "sqlite") {
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

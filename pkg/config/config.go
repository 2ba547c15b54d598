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
	Stripe        StripeConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"STITCHLINK_APP_ENV" required:"true"`
	Port         string `envconfig:"STITCHLINK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STITCHLINK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STITCHLINK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"STITCHLINK_DB_DSN"`

	LegacyHost     string `envconfig:"STITCHLINK_DB_HOST"`
	LegacyPort     int    `envconfig:"STITCHLINK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STITCHLINK_DB_USER"`
	LegacyPassword string `envconfig:"STITCHLINK_DB_PASSWORD"`
	LegacyName     string `envconfig:"STITCHLINK_DB_NAME"`
	LegacySSLMode  string `envconfig:"STITCHLINK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STITCHLINK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STITCHLINK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STITCHLINK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STITCHLINK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STITCHLINK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STITCHLINK_REDIS_ADDR"`
	Password     string        `envconfig:"STITCHLINK_REDIS_PASSWORD"`
	DB           int           `envconfig:"STITCHLINK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STITCHLINK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STITCHLINK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STITCHLINK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STITCHLINK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STITCHLINK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig carries both signing secrets: access and refresh tokens are
// verified against separate keys so a leaked access secret cannot mint
// refresh credentials.
type JWTConfig struct {
	AccessSecret      string `envconfig:"STITCHLINK_JWT_ACCESS_SECRET" required:"true"`
	RefreshSecret     string `envconfig:"STITCHLINK_JWT_REFRESH_SECRET" required:"true"`
	Issuer            string `envconfig:"STITCHLINK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"STITCHLINK_JWT_EXPIRATION_MINUTES" default:"15"`
	RefreshTTLMinutes int    `envconfig:"STITCHLINK_JWT_REFRESH_TTL_MINUTES" default:"43200"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token lifetime.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STITCHLINK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STITCHLINK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STITCHLINK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STITCHLINK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STITCHLINK_ARGON_KEY_LEN" default:"32"`
}

type StripeConfig struct {
	APIKey        string `envconfig:"STITCHLINK_STRIPE_API_KEY"`
	WebhookSecret string `envconfig:"STITCHLINK_STRIPE_WEBHOOK_SECRET"`
	Env           string `envconfig:"STITCHLINK_STRIPE_ENV" default:"test"`

	// Processing fee passed through to the seamstress payout, mirroring
	// Stripe's standard card rate.
	ResidualFeeBps        int `envconfig:"STITCHLINK_STRIPE_RESIDUAL_FEE_BPS" default:"290"`
	ResidualFeeFixedCents int `envconfig:"STITCHLINK_STRIPE_RESIDUAL_FEE_CENTS" default:"30"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// AuthRateLimitConfig bounds login and register attempts per IP and per
// email within a fixed window.
type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"STITCHLINK_AUTH_RL_LOGIN_WINDOW" default:"5m"`
	LoginIPLimit       int           `envconfig:"STITCHLINK_AUTH_RL_LOGIN_IP_LIMIT" default:"30"`
	LoginEmailLimit    int           `envconfig:"STITCHLINK_AUTH_RL_LOGIN_EMAIL_LIMIT" default:"10"`
	RegisterWindow     time.Duration `envconfig:"STITCHLINK_AUTH_RL_REGISTER_WINDOW" default:"1h"`
	RegisterIPLimit    int           `envconfig:"STITCHLINK_AUTH_RL_REGISTER_IP_LIMIT" default:"20"`
	RegisterEmailLimit int           `envconfig:"STITCHLINK_AUTH_RL_REGISTER_EMAIL_LIMIT" default:"5"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STITCHLINK_AUTO_MIGRATE" default:"false"`
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

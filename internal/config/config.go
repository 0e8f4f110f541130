package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// FeatureFlags gates the intelligence subsystem. Both flags default to on;
// overrides come from the environment and are handed to services at
// construction rather than read from ambient storage.
type FeatureFlags struct {
	SchedulerEnabled bool
	WriteBackEnabled bool
}

type Config struct {
	Port            string        `mapstructure:"PORT"`
	Env             string        `mapstructure:"ENV"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	DBMaxConns      int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32         `mapstructure:"DB_MIN_CONNS"`
	RedisURL        string        `mapstructure:"REDIS_URL"`
	AuthIssuer      string        `mapstructure:"AUTH_ISSUER"`
	AuthAudience    string        `mapstructure:"AUTH_AUDIENCE"`
	AuthSigningKey  string        `mapstructure:"AUTH_SIGNING_KEY"`
	DefaultClinic   string        `mapstructure:"DEFAULT_CLINIC"`
	CORSOrigins     []string      `mapstructure:"CORS_ORIGINS"`
	RefreshInterval time.Duration `mapstructure:"SCHEDULE_REFRESH_INTERVAL"`
	// MaxRecommendationAge bounds the data-freshness check at approval
	// time. Zero disables the staleness rule.
	MaxRecommendationAge time.Duration `mapstructure:"MAX_RECOMMENDATION_AGE"`
	RecommendationTTL    time.Duration `mapstructure:"RECOMMENDATION_TTL"`
	Features             FeatureFlags  `mapstructure:"-"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("DEFAULT_CLINIC", "default")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("SCHEDULE_REFRESH_INTERVAL", 5*time.Minute)
	v.SetDefault("MAX_RECOMMENDATION_AGE", time.Duration(0))
	v.SetDefault("RECOMMENDATION_TTL", 24*time.Hour)
	v.SetDefault("FEATURE_SCHEDULER", true)
	v.SetDefault("FEATURE_WRITEBACK", true)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("REDIS_URL")
	v.BindEnv("AUTH_ISSUER")
	v.BindEnv("AUTH_AUDIENCE")
	v.BindEnv("AUTH_SIGNING_KEY")
	v.BindEnv("DEFAULT_CLINIC")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("SCHEDULE_REFRESH_INTERVAL")
	v.BindEnv("MAX_RECOMMENDATION_AGE")
	v.BindEnv("RECOMMENDATION_TTL")
	v.BindEnv("FEATURE_SCHEDULER")
	v.BindEnv("FEATURE_WRITEBACK")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Features = FeatureFlags{
		SchedulerEnabled: v.GetBool("FEATURE_SCHEDULER"),
		WriteBackEnabled: v.GetBool("FEATURE_WRITEBACK"),
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active: all requests get admin access.")
		log.Println("WARNING: Set ENV=production and configure AUTH_ISSUER for production.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Outside development,
// JWT validation must be configured one way or the other.
func (c *Config) Validate() error {
	if !c.IsDev() && c.AuthIssuer == "" && c.AuthSigningKey == "" {
		return fmt.Errorf("AUTH_ISSUER or AUTH_SIGNING_KEY must be set when ENV=%q; refusing to start without authentication", c.Env)
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("SCHEDULE_REFRESH_INTERVAL must not be negative")
	}
	if c.RecommendationTTL <= 0 {
		return fmt.Errorf("RECOMMENDATION_TTL must be positive")
	}
	if c.MaxRecommendationAge < 0 {
		return fmt.Errorf("MAX_RECOMMENDATION_AGE must not be negative")
	}
	return nil
}

package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Event source backends.
const (
	SourcePostgres = "postgres"
	SourceICS      = "ics"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Calendar CalendarConfig
	Source   SourceConfig
	Cache    CacheConfig
	Warmup   WarmupConfig
	Share    ShareConfig
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

// JWTConfig holds the secret viewer tokens are verified with. An empty secret
// treats every viewer as anonymous.
type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CalendarConfig shapes the month grid and the accepted date range.
type CalendarConfig struct {
	MinYear   int
	MaxYear   int
	WeekStart string
	GridWeeks int
	Timezone  string
	Locale    string
}

// SourceConfig selects the event backend.
type SourceConfig struct {
	Backend         string
	ICSSourcesFile  string
	ICSFetchTimeout time.Duration
}

// CacheConfig controls the month summary read-through cache.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// WarmupConfig controls the scheduled refresh of upcoming month summaries.
type WarmupConfig struct {
	Enabled     bool
	Schedule    string
	Workers     int
	MonthsAhead int
	Timeout     time.Duration
}

// ShareConfig configures signed share links.
type ShareConfig struct {
	Secret  string
	TTL     time.Duration
	BaseURL string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:            v.GetString("DB_HOST"),
		Port:            v.GetInt("DB_PORT"),
		User:            v.GetString("DB_USER"),
		Password:        v.GetString("DB_PASSWORD"),
		Name:            v.GetString("DB_NAME"),
		SSLMode:         v.GetString("DB_SSL_MODE"),
		MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
		ConnMaxLifetime: parseDuration(v.GetString("DB_CONN_MAX_LIFETIME"), time.Hour),
	}

	cfg.Redis = RedisConfig{
		Host:      v.GetString("REDIS_HOST"),
		Port:      v.GetInt("REDIS_PORT"),
		Password:  v.GetString("REDIS_PASSWORD"),
		DB:        v.GetInt("REDIS_DB"),
		KeyPrefix: v.GetString("REDIS_KEY_PREFIX"),
	}

	cfg.JWT = JWTConfig{Secret: v.GetString("JWT_SECRET")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Calendar = CalendarConfig{
		MinYear:   v.GetInt("CALENDAR_MIN_YEAR"),
		MaxYear:   v.GetInt("CALENDAR_MAX_YEAR"),
		WeekStart: v.GetString("CALENDAR_WEEK_START"),
		GridWeeks: v.GetInt("CALENDAR_GRID_WEEKS"),
		Timezone:  v.GetString("CALENDAR_TIMEZONE"),
		Locale:    v.GetString("CALENDAR_LOCALE"),
	}
	if cfg.Calendar.MinYear > cfg.Calendar.MaxYear {
		return nil, errors.New("CALENDAR_MIN_YEAR must not exceed CALENDAR_MAX_YEAR")
	}

	cfg.Source = SourceConfig{
		Backend:         strings.ToLower(strings.TrimSpace(v.GetString("EVENT_SOURCE"))),
		ICSSourcesFile:  v.GetString("ICS_SOURCES_FILE"),
		ICSFetchTimeout: parseDuration(v.GetString("ICS_FETCH_TIMEOUT"), 15*time.Second),
	}
	if cfg.Source.Backend != SourcePostgres && cfg.Source.Backend != SourceICS {
		return nil, errors.New("EVENT_SOURCE must be postgres or ics")
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_SUMMARY_CACHE"),
		TTL:     parseDuration(v.GetString("SUMMARY_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Warmup = WarmupConfig{
		Enabled:     v.GetBool("ENABLE_SUMMARY_WARMUP"),
		Schedule:    v.GetString("SUMMARY_WARMUP_CRON"),
		Workers:     v.GetInt("SUMMARY_WARMUP_WORKERS"),
		MonthsAhead: v.GetInt("SUMMARY_WARMUP_MONTHS_AHEAD"),
		Timeout:     parseDuration(v.GetString("SUMMARY_WARMUP_TIMEOUT"), 20*time.Second),
	}

	cfg.Share = ShareConfig{
		Secret:  v.GetString("SHARE_LINK_SECRET"),
		TTL:     parseDuration(v.GetString("SHARE_LINK_TTL"), 30*24*time.Hour),
		BaseURL: v.GetString("SHARE_LINK_BASE_URL"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "popspot")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "1h")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY_PREFIX", "popspot:calendar")

	v.SetDefault("JWT_SECRET", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CALENDAR_MIN_YEAR", 2020)
	v.SetDefault("CALENDAR_MAX_YEAR", 2030)
	v.SetDefault("CALENDAR_WEEK_START", "sunday")
	v.SetDefault("CALENDAR_GRID_WEEKS", 6)
	v.SetDefault("CALENDAR_TIMEZONE", "Asia/Seoul")
	v.SetDefault("CALENDAR_LOCALE", "ko")

	v.SetDefault("EVENT_SOURCE", SourcePostgres)
	v.SetDefault("ICS_SOURCES_FILE", "./ics_sources.yaml")
	v.SetDefault("ICS_FETCH_TIMEOUT", "15s")

	v.SetDefault("ENABLE_SUMMARY_CACHE", true)
	v.SetDefault("SUMMARY_CACHE_TTL", "5m")

	v.SetDefault("ENABLE_SUMMARY_WARMUP", false)
	v.SetDefault("SUMMARY_WARMUP_CRON", "@every 10m")
	v.SetDefault("SUMMARY_WARMUP_WORKERS", 2)
	v.SetDefault("SUMMARY_WARMUP_MONTHS_AHEAD", 2)
	v.SetDefault("SUMMARY_WARMUP_TIMEOUT", "20s")

	v.SetDefault("SHARE_LINK_SECRET", "")
	v.SetDefault("SHARE_LINK_TTL", "720h")
	v.SetDefault("SHARE_LINK_BASE_URL", "http://localhost:8080")
}

// Location resolves the configured calendar zone, falling back to UTC.
func (c CalendarConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

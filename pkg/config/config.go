package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Solver   SolverConfig
	Export   ExportConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SolverConfig governs the timetable generation pipeline.
type SolverConfig struct {
	// DefaultTimeLimit applies when a generate request carries no budget.
	DefaultTimeLimit time.Duration
	// MaxTimeLimit caps any requested budget.
	MaxTimeLimit time.Duration
	// ResultCacheTTL bounds how long the last solve summary stays in Redis.
	ResultCacheTTL time.Duration
	// MaxDailyHoursFullTime and MaxDailyHoursPartTime bound per-day teaching load.
	MaxDailyHoursFullTime int
	MaxDailyHoursPartTime int
	// MaxWorkingDaysPartTime bounds distinct teaching days for part-time staff.
	MaxWorkingDaysPartTime int
}

// ExportConfig controls the timetable export endpoints.
type ExportConfig struct {
	Enabled bool
	Title   string
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{
		Env:       v.GetString("ENV"),
		Port:      v.GetInt("PORT"),
		APIPrefix: v.GetString("API_PREFIX"),
		Database: DatabaseConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetInt("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitNonEmpty(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Solver: SolverConfig{
			DefaultTimeLimit:       v.GetDuration("SOLVER_DEFAULT_TIME_LIMIT"),
			MaxTimeLimit:           v.GetDuration("SOLVER_MAX_TIME_LIMIT"),
			ResultCacheTTL:         v.GetDuration("SOLVER_RESULT_CACHE_TTL"),
			MaxDailyHoursFullTime:  v.GetInt("SOLVER_MAX_DAILY_HOURS_FULL_TIME"),
			MaxDailyHoursPartTime:  v.GetInt("SOLVER_MAX_DAILY_HOURS_PART_TIME"),
			MaxWorkingDaysPartTime: v.GetInt("SOLVER_MAX_WORKING_DAYS_PART_TIME"),
		},
		Export: ExportConfig{
			Enabled: v.GetBool("EXPORT_ENABLED"),
			Title:   v.GetString("EXPORT_TITLE"),
		},
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
	v.SetDefault("DB_NAME", "stundenplan")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SOLVER_DEFAULT_TIME_LIMIT", time.Minute)
	v.SetDefault("SOLVER_MAX_TIME_LIMIT", time.Hour)
	v.SetDefault("SOLVER_RESULT_CACHE_TTL", 10*time.Minute)
	v.SetDefault("SOLVER_MAX_DAILY_HOURS_FULL_TIME", 6)
	v.SetDefault("SOLVER_MAX_DAILY_HOURS_PART_TIME", 3)
	v.SetDefault("SOLVER_MAX_WORKING_DAYS_PART_TIME", 3)

	v.SetDefault("EXPORT_ENABLED", true)
	v.SetDefault("EXPORT_TITLE", "Stundenplan")
}

func splitNonEmpty(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isMissingFile(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such file")
}

package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/meetingscribe-backend/internal/data/db"
	"github.com/yungbote/meetingscribe-backend/internal/modules/intake"
	"github.com/yungbote/meetingscribe-backend/internal/modules/summarizer"
	"github.com/yungbote/meetingscribe-backend/internal/modules/transcription"
	"github.com/yungbote/meetingscribe-backend/internal/observability"
	"github.com/yungbote/meetingscribe-backend/internal/platform/envutil"
	"github.com/yungbote/meetingscribe-backend/internal/platform/llm"
	"github.com/yungbote/meetingscribe-backend/internal/platform/lock"
	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
	"github.com/yungbote/meetingscribe-backend/internal/temporalx"
)

const defaultJWTSecret = "defaultsecret"

type Config struct {
	Port            string
	LogMode         string
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	Otel observability.OtelConfig
	DB   db.Config

	JWTSecretKey string

	MaxUploadBytes    int64
	SpeechLanguage    string
	TranscribeTimeout time.Duration

	LLM            llm.Config
	SummarizerMode string

	Redis    lock.RedisConfig
	Temporal temporalx.Config

	QuotaDefaultMaxMinutes int
	QuotaResetInterval     time.Duration
	OrphanSweepInterval    time.Duration
	OrphanSweepGrace       time.Duration
}

// LoadConfig reads the environment. A CONFIG_FILE YAML overlay fills in keys the environment leaves unset.
func LoadConfig(log *logger.Logger) (Config, error) {
	if path := envutil.String("CONFIG_FILE", ""); path != "" {
		n, err := applyYAMLOverlay(path)
		if err != nil {
			return Config{}, err
		}
		if log != nil {
			log.Info("Applied config overlay", "path", path, "keys", n)
		}
	}

	cfg := Config{
		Port:            envutil.String("PORT", "8080"),
		LogMode:         envutil.String("LOG_MODE", "development"),
		ShutdownTimeout: envutil.Duration("SHUTDOWN_TIMEOUT", 15*time.Second),
		CORSOrigins:     splitList(envutil.String("CORS_ALLOWED_ORIGINS", "")),

		Otel: observability.OtelConfig{
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "meetingscribe-backend"),
			Environment: envutil.String("APP_ENV", "development"),
			Version:     envutil.String("APP_VERSION", "dev"),
		},

		DB: db.Config{
			Driver:           strings.ToLower(envutil.String("DB_DRIVER", db.DriverPostgres)),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "meetingscribe"),
			SQLitePath:       envutil.String("SQLITE_PATH", "meetingscribe.db"),
			MySQLDSN:         envutil.String("MYSQL_DSN", ""),
		},

		JWTSecretKey: envutil.String("JWT_SECRET_KEY", defaultJWTSecret),

		MaxUploadBytes:    int64(envutil.Int("MAX_UPLOAD_BYTES", int(intake.DefaultMaxUploadBytes))),
		SpeechLanguage:    envutil.String("SPEECH_LANGUAGE_CODE", "en-US"),
		TranscribeTimeout: envutil.Duration("TRANSCRIBE_TIMEOUT", transcription.DefaultTimeout),

		LLM:            llm.ConfigFromEnv(),
		SummarizerMode: strings.ToLower(envutil.String("SUMMARIZER_MODE", summarizer.ModeSingle)),

		Redis: lock.RedisConfig{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			Prefix:   envutil.String("REDIS_LOCK_PREFIX", ""),
		},
		Temporal: temporalx.LoadConfig(),

		QuotaDefaultMaxMinutes: envutil.Int("QUOTA_DEFAULT_MAX_MINUTES", 60),
		QuotaResetInterval:     envutil.Duration("QUOTA_RESET_INTERVAL", time.Hour),
		OrphanSweepInterval:    envutil.Duration("ORPHAN_SWEEP_INTERVAL", 6*time.Hour),
		OrphanSweepGrace:       envutil.Duration("ORPHAN_SWEEP_GRACE", time.Hour),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	if cfg.JWTSecretKey == defaultJWTSecret && log != nil {
		log.Warn("JWT_SECRET_KEY not set; using the development default")
	}
	return cfg, nil
}

// orphanGraceSlack covers receiving and staging an upload before transcription starts.
const orphanGraceSlack = 15 * time.Minute

// MinOrphanSweepGrace is the shortest grace that cannot remove audio still being uploaded or transcribed.
func (c Config) MinOrphanSweepGrace() time.Duration {
	return c.TranscribeTimeout + orphanGraceSlack
}

func (c Config) validate() error {
	switch c.DB.Driver {
	case db.DriverPostgres, db.DriverSQLite, db.DriverMySQL:
	default:
		return fmt.Errorf("invalid DB_DRIVER=%q (allowed: postgres, sqlite, mysql)", c.DB.Driver)
	}
	if c.DB.Driver == db.DriverMySQL && c.DB.MySQLDSN == "" {
		return fmt.Errorf("DB_DRIVER=mysql requires MYSQL_DSN")
	}
	switch c.SummarizerMode {
	case summarizer.ModeSingle, summarizer.ModeSplit:
	default:
		return fmt.Errorf("invalid SUMMARIZER_MODE=%q (allowed: single, split)", c.SummarizerMode)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.TranscribeTimeout <= 0 {
		return fmt.Errorf("TRANSCRIBE_TIMEOUT must be positive")
	}
	// The sweep deletes staged scratch audio, so it must outlast an upload plus a transcription.
	if c.OrphanSweepGrace < c.MinOrphanSweepGrace() {
		return fmt.Errorf("ORPHAN_SWEEP_GRACE must be at least TRANSCRIBE_TIMEOUT plus %s", orphanGraceSlack)
	}
	return nil
}

// applyYAMLOverlay sets each top-level key of a flat YAML map as an env var unless it already has a value.
func applyYAMLOverlay(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read config file %s: %w", path, err)
	}
	var values map[string]any
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return 0, fmt.Errorf("parse config file %s: %w", path, err)
	}
	n := 0
	for key, v := range values {
		key = strings.ToUpper(strings.TrimSpace(key))
		if key == "" || v == nil {
			continue
		}
		if strings.TrimSpace(os.Getenv(key)) != "" {
			continue
		}
		var s string
		switch tv := v.(type) {
		case []any:
			parts := make([]string, 0, len(tv))
			for _, p := range tv {
				parts = append(parts, fmt.Sprint(p))
			}
			s = strings.Join(parts, ",")
		case map[string]any:
			return n, fmt.Errorf("config file %s: key %s must be a scalar or list", path, key)
		default:
			s = fmt.Sprint(tv)
		}
		if err := os.Setenv(key, s); err != nil {
			return n, fmt.Errorf("set %s: %w", key, err)
		}
		n++
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

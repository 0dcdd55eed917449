package configs

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"

	"notesku_backend/internals/logger"
)

// App adalah konfigurasi proses, dibangun sekali di LoadEnv lalu dipassing eksplisit.
type App struct {
	Port string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string
	DBSSLMode  string

	JWTSecret        string
	JWTRefreshSecret string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	AutoConfirm      bool

	// AdminCode hanya penghalang lunak di sisi UI, bukan batas otorisasi.
	AdminCode string

	PublicBaseURL string
	CorsOrigins   []string

	StorageDriver   string // oss | local
	StorageBucket   string
	StorageLocalDir string

	OSSEndpoint      string
	OSSAccessKey     string
	OSSSecretKey     string
	OSSSecurityToken string
	OSSPublicBase    string

	ClientIdleTTL time.Duration
	MaxClients    int
	// ClientCookieSecret menandatangani cookie notes_client.
	ClientCookieSecret string
	BlacklistTTLDays   int
	RequestTimeout     time.Duration
	MaxUploadBodySize  int
}

// =======================
// ENV LOADER
// =======================
func LoadEnv() App {
	log := logger.L()
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Warn().Msg("no .env file found, using system environment")
		} else {
			log.Info().Msg(".env loaded")
		}
	} else {
		log.Info().Msg("running in Railway, using system environment")
	}

	cfg := App{
		Port: GetEnv("PORT", "3000"),

		DBUser:     GetEnv("DB_USER"),
		DBPassword: GetEnv("DB_PASSWORD"),
		DBHost:     GetEnv("DB_HOST", "localhost"),
		DBPort:     GetEnv("DB_PORT", "5432"),
		DBName:     GetEnv("DB_NAME"),
		DBSSLMode:  GetEnv("DB_SSLMODE", "require"),

		JWTSecret:        GetEnv("JWT_SECRET"),
		JWTRefreshSecret: GetEnv("JWT_REFRESH_SECRET"),
		AccessTTL:        time.Duration(envInt("ACCESS_TTL_MINUTES", 60)) * time.Minute,
		RefreshTTL:       time.Duration(envInt("REFRESH_TTL_HOURS", 24*7)) * time.Hour,
		AutoConfirm:      envBool("AUTH_AUTOCONFIRM", false),

		AdminCode: GetEnv("ADMIN_CODE"),

		PublicBaseURL: strings.TrimRight(GetEnv("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
		CorsOrigins:   splitList(GetEnv("CORS_ORIGINS")),

		StorageDriver:   strings.ToLower(GetEnv("STORAGE_DRIVER", "local")),
		StorageBucket:   GetEnv("STORAGE_BUCKET", "notes"),
		StorageLocalDir: GetEnv("STORAGE_LOCAL_DIR", "./storage"),

		OSSEndpoint:      GetEnv("ALI_OSS_ENDPOINT"),
		OSSAccessKey:     GetEnv("ALI_OSS_ACCESS_KEY"),
		OSSSecretKey:     GetEnv("ALI_OSS_SECRET_KEY"),
		OSSSecurityToken: GetEnv("ALI_OSS_SECURITY_TOKEN"),
		OSSPublicBase:    strings.TrimRight(GetEnv("ALI_OSS_PUBLIC_BASE"), "/"),

		ClientIdleTTL:     time.Duration(envInt("CLIENT_IDLE_TTL_MINUTES", 120)) * time.Minute,
		MaxClients:        envInt("MAX_CLIENTS", 10000),
		BlacklistTTLDays:  envInt("TOKEN_BLACKLIST_TTL_DAYS", 7),
		RequestTimeout:    time.Duration(envInt("REQUEST_TIMEOUT_SECONDS", 60)) * time.Second,
		MaxUploadBodySize: envInt("MAX_BODY_MB", 60) * 1024 * 1024,
	}

	if cfg.JWTSecret == "" {
		log.Error().Msg("JWT_SECRET is not set")
	}
	if cfg.JWTRefreshSecret == "" {
		log.Error().Msg("JWT_REFRESH_SECRET is not set")
	}
	cfg.ClientCookieSecret = GetEnv("CLIENT_COOKIE_SECRET", cfg.JWTRefreshSecret)
	if cfg.ClientCookieSecret == "" {
		log.Warn().Msg("CLIENT_COOKIE_SECRET is not set, client cookies reset on restart")
	}
	if cfg.AdminCode == "" {
		log.Warn().Msg("ADMIN_CODE is not set, catalog management is disabled")
	}
	return cfg
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if (!exists || strings.TrimSpace(value) == "") && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return strings.TrimSpace(value)
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envInt(key string, def int) int {
	if v := GetEnv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := GetEnv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// DSN membangun connection string postgres (Supabase/PgBouncer friendly).
func (a App) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=notesku&options=-c statement_timeout=5000",
		a.DBUser, a.DBPassword, a.DBHost, a.DBPort, a.DBName, a.DBSSLMode,
	)
}

// =======================
// DATABASE CONNECTOR
// =======================
func OpenDB(cfg App) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // hindari cache prepared statement di PgBouncer
	}), &gorm.Config{
		Logger: NewGormLogger(logger.L()),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
	log           zerolog.Logger
}

func NewGormLogger(l zerolog.Logger) gormLogger.Interface {
	return &GormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      gormLogger.Warn,
		log:           l.With().Str("component", "gorm").Logger(),
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	cp := *l
	cp.LogLevel = level
	return &cp
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Info {
		l.log.Info().Msgf(msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Warn {
		l.log.Warn().Msgf(msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Error {
		l.log.Error().Msgf(msg, data...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	file := utils.FileWithLineNum()

	switch {
	case err != nil && l.LogLevel >= gormLogger.Error:
		l.log.Error().Err(err).Str("at", file).Dur("elapsed", elapsed).Int64("rows", rows).Msg(sql)
	case elapsed > l.SlowThreshold && l.LogLevel >= gormLogger.Warn:
		l.log.Warn().Str("at", file).Dur("elapsed", elapsed).Int64("rows", rows).Msg("[SLOW SQL] " + sql)
	case l.LogLevel >= gormLogger.Info:
		l.log.Debug().Str("at", file).Dur("elapsed", elapsed).Int64("rows", rows).Msg(sql)
	}
}

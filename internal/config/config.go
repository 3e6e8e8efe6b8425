package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/platform/scheduler"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                     string
	ServiceName                string
	ServiceVersion             string
	HTTPAddr                   string
	ReadTimeout                time.Duration
	WriteTimeout               time.Duration
	LogLevel                   logging.Level
	CORSAllowedOrigins         []string
	SwaggerEnabled             bool
	DBURL                      string
	DBDisablePreparedBinary    bool
	DBBootstrapSeed            bool
	CacheEnabled               bool
	CacheTTL                   time.Duration
	AuthJWTSecret              string
	AuthJWTIssuer              string
	AuthAdminRole              string
	AuthTokenCacheTTL          time.Duration
	EvaluationMaxRetries       int
	EvaluationRetryBackoff     time.Duration
	EvaluationBatchWorkers     int
	EvaluationJobEnabled       bool
	EvaluationJobCron          string
	EvaluationJobBatchSize     int
	AuditWebhookURL            string
	AuditWebhookToken          string
	AuditWebhookTimeout        time.Duration
	AuditCircuitEnabled        bool
	AuditCircuitFailureCount   int
	AuditCircuitOpenTimeout    time.Duration
	AuditCircuitHalfOpenMaxReq int
	RedisEnabled               bool
	RedisAddr                  string
	RedisPassword              string
	RedisDB                    int
	RedisInvalidationChannel   string
	MetricsEnabled             bool
	UptraceEnabled             bool
	UptraceDSN                 string
	UptraceLogsEnabled         bool
	UptraceCaptureRequestBody  bool
	UptraceRequestBodyMaxBytes int
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
	PprofEnabled               bool
	PprofAddr                  string
}

// UsesMemoryStore reports whether the service runs on the seeded in-process store.
func (c Config) UsesMemoryStore() bool {
	return strings.TrimSpace(c.DBURL) == ""
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:                     appEnv,
		ServiceName:                getEnv("APP_SERVICE_NAME", "prediction-league-api"),
		ServiceVersion:             getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                   getEnv("APP_HTTP_ADDR", ":8080"),
		LogLevel:                   logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		CORSAllowedOrigins:         splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		DBURL:                      strings.TrimSpace(os.Getenv("DB_URL")),
		AuthJWTSecret:              strings.TrimSpace(getEnv("AUTH_JWT_SECRET", "")),
		AuthJWTIssuer:              strings.TrimSpace(getEnv("AUTH_JWT_ISSUER", "prediction-league")),
		AuthAdminRole:              strings.TrimSpace(getEnv("AUTH_ADMIN_ROLE", "admin")),
		EvaluationJobCron:          strings.TrimSpace(getEnv("EVALUATION_JOB_CRON", "@every 5m")),
		AuditWebhookURL:            strings.TrimSpace(getEnv("AUDIT_WEBHOOK_URL", "")),
		AuditWebhookToken:          strings.TrimSpace(getEnv("AUDIT_WEBHOOK_TOKEN", "")),
		RedisAddr:                  strings.TrimSpace(getEnv("REDIS_ADDR", "localhost:6379")),
		RedisPassword:              getEnv("REDIS_PASSWORD", ""),
		RedisInvalidationChannel:   strings.TrimSpace(getEnv("REDIS_INVALIDATION_CHANNEL", "prediction-league:cache-invalidation")),
		PyroscopeServerAddress:     strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", "")),
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PprofAddr:                  strings.TrimSpace(getEnv("PPROF_ADDR", ":6060")),
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	swaggerDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
	}

	bools := []struct {
		key      string
		fallback string
		dst      *bool
	}{
		{"SWAGGER_ENABLED", swaggerDefault, &cfg.SwaggerEnabled},
		{"DB_DISABLE_PREPARED_BINARY_RESULT", "true", &cfg.DBDisablePreparedBinary},
		{"DB_BOOTSTRAP_SEED", "false", &cfg.DBBootstrapSeed},
		{"CACHE_ENABLED", "true", &cfg.CacheEnabled},
		{"EVALUATION_JOB_ENABLED", "false", &cfg.EvaluationJobEnabled},
		{"AUDIT_CIRCUIT_ENABLED", "true", &cfg.AuditCircuitEnabled},
		{"REDIS_ENABLED", "false", &cfg.RedisEnabled},
		{"METRICS_ENABLED", "true", &cfg.MetricsEnabled},
		{"UPTRACE_ENABLED", "false", &cfg.UptraceEnabled},
		{"UPTRACE_LOGS_ENABLED", "true", &cfg.UptraceLogsEnabled},
		{"UPTRACE_CAPTURE_REQUEST_BODY", "true", &cfg.UptraceCaptureRequestBody},
		{"PYROSCOPE_ENABLED", "false", &cfg.PyroscopeEnabled},
		{"PPROF_ENABLED", "false", &cfg.PprofEnabled},
	}
	for _, item := range bools {
		v, err := strconv.ParseBool(getEnv(item.key, item.fallback))
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", item.key, err)
		}
		*item.dst = v
	}

	durations := []struct {
		key      string
		fallback string
		dst      *time.Duration
	}{
		{"APP_READ_TIMEOUT", "10s", &cfg.ReadTimeout},
		{"APP_WRITE_TIMEOUT", "15s", &cfg.WriteTimeout},
		{"CACHE_TTL", "60s", &cfg.CacheTTL},
		{"AUTH_TOKEN_CACHE_TTL", "30s", &cfg.AuthTokenCacheTTL},
		{"EVALUATION_RETRY_BACKOFF", "50ms", &cfg.EvaluationRetryBackoff},
		{"AUDIT_WEBHOOK_TIMEOUT", "3s", &cfg.AuditWebhookTimeout},
		{"AUDIT_CIRCUIT_OPEN_TIMEOUT", "15s", &cfg.AuditCircuitOpenTimeout},
		{"PYROSCOPE_UPLOAD_RATE", "15s", &cfg.PyroscopeUploadRate},
	}
	for _, item := range durations {
		v, err := time.ParseDuration(getEnv(item.key, item.fallback))
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", item.key, err)
		}
		if v <= 0 {
			return Config{}, fmt.Errorf("%s must be > 0", item.key)
		}
		*item.dst = v
	}

	ints := []struct {
		key      string
		fallback int
		min      int
		dst      *int
	}{
		{"EVALUATION_MAX_RETRIES", 3, 0, &cfg.EvaluationMaxRetries},
		{"EVALUATION_BATCH_WORKERS", 4, 1, &cfg.EvaluationBatchWorkers},
		{"EVALUATION_JOB_BATCH_SIZE", 50, 1, &cfg.EvaluationJobBatchSize},
		{"AUDIT_CIRCUIT_FAILURE_COUNT", 5, 1, &cfg.AuditCircuitFailureCount},
		{"AUDIT_CIRCUIT_HALF_OPEN_MAX_REQ", 2, 1, &cfg.AuditCircuitHalfOpenMaxReq},
		{"REDIS_DB", 0, 0, &cfg.RedisDB},
		{"UPTRACE_REQUEST_BODY_MAX_BYTES", 8192, 1, &cfg.UptraceRequestBodyMaxBytes},
	}
	for _, item := range ints {
		v, err := getEnvAsInt(item.key, item.fallback)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", item.key, err)
		}
		if v < item.min {
			return Config{}, fmt.Errorf("%s must be >= %d", item.key, item.min)
		}
		*item.dst = v
	}

	if cfg.AuthAdminRole == "" {
		return Config{}, fmt.Errorf("AUTH_ADMIN_ROLE cannot be empty")
	}
	if cfg.AuthJWTSecret == "" && appEnv != EnvDev {
		return Config{}, fmt.Errorf("AUTH_JWT_SECRET is required when APP_ENV=%s", appEnv)
	}

	if cfg.EvaluationJobEnabled {
		if err := scheduler.ValidateSpec(cfg.EvaluationJobCron); err != nil {
			return Config{}, fmt.Errorf("parse EVALUATION_JOB_CRON: %w", err)
		}
	}

	if cfg.RedisEnabled && cfg.RedisAddr == "" {
		return Config{}, fmt.Errorf("REDIS_ADDR is required when REDIS_ENABLED=true")
	}

	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))

	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	for _, item := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			return strings.Trim(strings.TrimSpace(parts[1]), "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

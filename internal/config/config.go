// Пакет config — загрузка и валидация конфигурации Transfer Module
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации Transfer Module.
type Config struct {
	// Порт HTTP-сервера
	Port int

	// PostgreSQL
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// S3-совместимое объектное хранилище
	S3Endpoint       string
	S3Region         string
	S3Bucket         string
	S3AccessKey      string
	S3SecretKey      string
	S3ForcePathStyle bool

	// Максимальный размер файла в байтах
	MaxFileSize int64
	// Размер чанка multipart upload в байтах
	ChunkSize int64
	// Порог прямой загрузки без multipart (зарезервировано)
	SmallFileThreshold int64

	// Базовый URL коротких ссылок (https://example.com → https://example.com/<code>)
	ShortLinkBaseURL string
	// URL frontend-приложения (redirect-страницы /s/<code>)
	FrontendURL string
	// TTL presigned download URL
	PresignTTL time.Duration

	// Размер per-instance LRU-кэша записей передач
	CacheSize int
	// TTL записи в LRU-кэше
	CacheTTL time.Duration

	// Интервал запуска reaper (abort брошенных multipart-сессий)
	ReaperInterval time.Duration

	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
	// Таймауты HTTP-сервера
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// Интервал проверки зависимостей topologymetrics
	DephealthCheckInterval time.Duration
	// Имя группы в метриках topologymetrics (TM_DEPHEALTH_GROUP)
	DephealthGroup string
	// Имя владельца пода для метки name в topologymetrics (DEPHEALTH_NAME)
	DephealthName string
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// TM_PORT — порт HTTP-сервера (по умолчанию 8040)
	cfg.Port, err = getEnvInt("TM_PORT", 8040)
	if err != nil {
		return nil, fmt.Errorf("TM_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("TM_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// --- PostgreSQL ---

	// TM_DB_HOST — обязательный
	cfg.DBHost, err = getEnvRequired("TM_DB_HOST")
	if err != nil {
		return nil, err
	}

	// TM_DB_PORT — порт PostgreSQL (по умолчанию 5432)
	cfg.DBPort, err = getEnvInt("TM_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("TM_DB_PORT: %w", err)
	}

	// TM_DB_NAME — обязательный
	cfg.DBName, err = getEnvRequired("TM_DB_NAME")
	if err != nil {
		return nil, err
	}

	// TM_DB_USER — обязательный
	cfg.DBUser, err = getEnvRequired("TM_DB_USER")
	if err != nil {
		return nil, err
	}

	// TM_DB_PASSWORD — обязательный
	cfg.DBPassword, err = getEnvRequired("TM_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	// TM_DB_SSL_MODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("TM_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("TM_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// --- Redis ---

	// TM_REDIS_ADDR — адрес Redis (по умолчанию localhost:6379)
	cfg.RedisAddr = getEnvDefault("TM_REDIS_ADDR", "localhost:6379")

	// TM_REDIS_PASSWORD — пароль Redis (опционально)
	cfg.RedisPassword = getEnvDefault("TM_REDIS_PASSWORD", "")

	// TM_REDIS_DB — номер базы Redis (по умолчанию 0)
	cfg.RedisDB, err = getEnvInt("TM_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("TM_REDIS_DB: %w", err)
	}

	// --- S3 ---

	// TM_S3_ENDPOINT — endpoint S3-совместимого хранилища (пустой = AWS)
	cfg.S3Endpoint = getEnvDefault("TM_S3_ENDPOINT", "")

	// TM_S3_REGION — регион (по умолчанию us-east-1)
	cfg.S3Region = getEnvDefault("TM_S3_REGION", "us-east-1")

	// TM_S3_BUCKET — обязательный
	cfg.S3Bucket, err = getEnvRequired("TM_S3_BUCKET")
	if err != nil {
		return nil, err
	}

	// TM_S3_ACCESS_KEY — обязательный
	cfg.S3AccessKey, err = getEnvRequired("TM_S3_ACCESS_KEY")
	if err != nil {
		return nil, err
	}

	// TM_S3_SECRET_KEY — обязательный
	cfg.S3SecretKey, err = getEnvRequired("TM_S3_SECRET_KEY")
	if err != nil {
		return nil, err
	}

	// TM_S3_FORCE_PATH_STYLE — path-style addressing для MinIO/Ceph (по умолчанию true)
	cfg.S3ForcePathStyle, err = getEnvBool("TM_S3_FORCE_PATH_STYLE", true)
	if err != nil {
		return nil, fmt.Errorf("TM_S3_FORCE_PATH_STYLE: %w", err)
	}

	// --- Лимиты загрузки ---

	// TM_MAX_FILE_SIZE — максимальный размер файла (по умолчанию 1 GiB)
	cfg.MaxFileSize, err = getEnvInt64("TM_MAX_FILE_SIZE", 1<<30)
	if err != nil {
		return nil, fmt.Errorf("TM_MAX_FILE_SIZE: %w", err)
	}
	if cfg.MaxFileSize <= 0 {
		return nil, fmt.Errorf("TM_MAX_FILE_SIZE: значение должно быть положительным")
	}

	// TM_CHUNK_SIZE — размер чанка (по умолчанию 5 MiB, минимум S3 для multipart)
	cfg.ChunkSize, err = getEnvInt64("TM_CHUNK_SIZE", 5<<20)
	if err != nil {
		return nil, fmt.Errorf("TM_CHUNK_SIZE: %w", err)
	}
	if cfg.ChunkSize < 5<<20 {
		return nil, fmt.Errorf("TM_CHUNK_SIZE: значение %d меньше минимума S3 multipart (5 MiB)", cfg.ChunkSize)
	}

	// TM_SMALL_FILE_THRESHOLD — порог прямой загрузки (по умолчанию 10 MiB).
	// Зарезервировано для выбора direct-upload vs multipart.
	cfg.SmallFileThreshold, err = getEnvInt64("TM_SMALL_FILE_THRESHOLD", 10<<20)
	if err != nil {
		return nil, fmt.Errorf("TM_SMALL_FILE_THRESHOLD: %w", err)
	}

	// --- Ссылки ---

	// TM_SHORT_LINK_BASE_URL — базовый URL коротких ссылок (по умолчанию http://localhost:8040)
	cfg.ShortLinkBaseURL = strings.TrimRight(getEnvDefault("TM_SHORT_LINK_BASE_URL", "http://localhost:8040"), "/")

	// TM_FRONTEND_URL — URL frontend-приложения (по умолчанию http://localhost:5173)
	cfg.FrontendURL = strings.TrimRight(getEnvDefault("TM_FRONTEND_URL", "http://localhost:5173"), "/")

	// TM_PRESIGN_TTL — TTL presigned download URL (по умолчанию 1h)
	cfg.PresignTTL, err = getEnvDuration("TM_PRESIGN_TTL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("TM_PRESIGN_TTL: %w", err)
	}

	// --- Кэш ---

	// TM_CACHE_SIZE — размер LRU-кэша (по умолчанию 1000 записей)
	cfg.CacheSize, err = getEnvInt("TM_CACHE_SIZE", 1000)
	if err != nil {
		return nil, fmt.Errorf("TM_CACHE_SIZE: %w", err)
	}

	// TM_CACHE_TTL — TTL записи в LRU-кэше (по умолчанию 1m)
	cfg.CacheTTL, err = getEnvDuration("TM_CACHE_TTL", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("TM_CACHE_TTL: %w", err)
	}

	// --- Фоновые процессы ---

	// TM_REAPER_INTERVAL — интервал reaper (по умолчанию 1h)
	cfg.ReaperInterval, err = getEnvDuration("TM_REAPER_INTERVAL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("TM_REAPER_INTERVAL: %w", err)
	}

	// --- Логирование ---

	// TM_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("TM_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("TM_LOG_LEVEL: %w", err)
	}

	// TM_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("TM_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("TM_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- HTTP-сервер ---

	// TM_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("TM_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("TM_SHUTDOWN_TIMEOUT: %w", err)
	}

	// TM_HTTP_READ_TIMEOUT — таймаут чтения запроса (по умолчанию 60s,
	// с запасом на загрузку 5 MiB чанка по медленному каналу)
	cfg.HTTPReadTimeout, err = getEnvDuration("TM_HTTP_READ_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("TM_HTTP_READ_TIMEOUT: %w", err)
	}

	// TM_HTTP_WRITE_TIMEOUT — таймаут записи ответа (по умолчанию 60s)
	cfg.HTTPWriteTimeout, err = getEnvDuration("TM_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("TM_HTTP_WRITE_TIMEOUT: %w", err)
	}

	// TM_HTTP_IDLE_TIMEOUT — таймаут idle-соединений (по умолчанию 120s)
	cfg.HTTPIdleTimeout, err = getEnvDuration("TM_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("TM_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// --- topologymetrics ---

	// TM_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("TM_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("TM_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// TM_DEPHEALTH_GROUP — имя группы в метриках (по умолчанию "transfer-module")
	cfg.DephealthGroup = getEnvDefault("TM_DEPHEALTH_GROUP", "transfer-module")

	// DEPHEALTH_NAME — имя владельца пода для метки name в topologymetrics
	cfg.DephealthName = getEnvDefault("DEPHEALTH_NAME", "")

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL подключения к PostgreSQL
// (для golang-migrate и меток topologymetrics).
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvInt64 возвращает int64 значение переменной окружения или значение по умолчанию.
func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 6h)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}

// Точка входа Transfer Module — сервис временной передачи файлов и сообщений.
// Загружает конфигурацию, подключается к PostgreSQL, применяет миграции,
// инициализирует Redis-кэш и S3-шлюз, создаёт сервисный слой и API handlers,
// запускает фоновые задачи (reaper, topologymetrics)
// и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/bigkaa/gotransfer/internal/api/handlers"
	"github.com/bigkaa/gotransfer/internal/api/middleware"
	"github.com/bigkaa/gotransfer/internal/config"
	"github.com/bigkaa/gotransfer/internal/database"
	"github.com/bigkaa/gotransfer/internal/repository"
	"github.com/bigkaa/gotransfer/internal/server"
	"github.com/bigkaa/gotransfer/internal/service"
	"github.com/bigkaa/gotransfer/internal/storage/cache"
	"github.com/bigkaa/gotransfer/internal/storage/objectstore"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Transfer Module запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	if os.Getenv("TM_DEPHEALTH_GROUP") == "" {
		logger.Warn("TM_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode).
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. Redis-кэш (best-effort: при недоступности запускаемся без кэша)
	redisCache, err := cache.New(ctx, cfg, logger)
	if err != nil {
		logger.Warn("Redis недоступен, запуск без кэша",
			slog.String("addr", cfg.RedisAddr),
			slog.String("error", err.Error()),
		)
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	// 6. S3-шлюз
	store, err := objectstore.NewS3Gateway(cfg)
	if err != nil {
		logger.Error("Ошибка создания S3-шлюза", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("S3-шлюз создан",
		slog.String("endpoint", cfg.S3Endpoint),
		slog.String("bucket", cfg.S3Bucket),
	)

	// 7. Repository
	transferRepo := repository.NewTransferRepository(pool)

	// 8. Services
	var recordCache service.RecordCache
	if redisCache != nil {
		recordCache = redisCache
	}

	coordinator := service.NewUploadCoordinator(
		transferRepo, store, recordCache,
		service.NewCodeGenerator(),
		logger,
		cfg.MaxFileSize, cfg.ChunkSize,
		cfg.ShortLinkBaseURL,
	)

	localCache := service.NewLocalCache(cfg.CacheSize, cfg.CacheTTL)
	retrieval := service.NewRetrievalService(
		transferRepo, store, recordCache, localCache,
		logger,
		cfg.PresignTTL, cfg.FrontendURL,
	)

	// 9. Readiness checkers (PostgreSQL + Redis)
	pgChecker := database.NewReadinessChecker(pool)
	var redisChecker handlers.ReadinessChecker
	if redisCache != nil {
		redisChecker = redisCache.NewReadinessChecker()
	}
	healthHandler := handlers.NewHealthHandler(pgChecker, redisChecker)

	// 10. API handler (реализует generated.ServerInterface)
	uploadHandler := handlers.NewUploadHandler(coordinator, cfg.ChunkSize, logger)
	transferHandler := handlers.NewTransferHandler(retrieval, logger)
	apiHandler := handlers.NewAPIHandler(healthHandler, uploadHandler, transferHandler, logger)

	// 11. Фоновые задачи
	reaper := service.NewReaperService(transferRepo, store, cfg.ReaperInterval, logger)
	reaper.Start(ctx)
	defer reaper.Stop()

	// 11.1 topologymetrics — мониторинг зависимостей (PostgreSQL + S3)
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"transfer-module",
		cfg.DephealthGroup,
		pgDB,
		cfg.DatabaseURL(),
		cfg.S3Endpoint,
		cfg.DephealthCheckInterval,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else {
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
			defer dephealthSvc.Stop()
		}
	}

	// 12. HTTP-сервер с middleware: request id → metrics → logging
	srv := server.New(cfg, logger, apiHandler,
		middleware.RequestID(),
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
	)

	// 13. Запуск сервера (блокирующий вызов с graceful shutdown)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Transfer Module остановлен")
}

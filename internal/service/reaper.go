// reaper.go — сервис фоновой очистки брошенных multipart-сессий.
//
// Init создаёт multipart-сессию в S3 до сохранения записи; если клиент
// бросил загрузку (или init повторили после сбоя), части занимают место
// в хранилище бесконечно. Reaper находит истёкшие незавершённые передачи
// с активным upload_id, прерывает их сессии и очищает upload_id.
//
// Запускается как горутина с периодическим тикером (TM_REAPER_INTERVAL).
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/gotransfer/internal/repository"
	"github.com/bigkaa/gotransfer/internal/storage/objectstore"
)

// reaperBatchSize — максимум сессий, обрабатываемых за один цикл.
const reaperBatchSize = 100

// Prometheus метрики reaper
var (
	// reaperRunsTotal — количество запусков reaper.
	reaperRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tm_reaper_runs_total",
		Help: "Общее количество запусков reaper",
	})

	// reaperAbortedTotal — количество прерванных multipart-сессий.
	reaperAbortedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tm_reaper_aborted_total",
		Help: "Общее количество прерванных multipart-сессий",
	})

	// reaperDurationSeconds — длительность выполнения reaper.
	reaperDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tm_reaper_duration_seconds",
		Help:    "Длительность выполнения reaper в секундах",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	})
)

// ReaperResult — результат одного запуска reaper.
type ReaperResult struct {
	// AbortedCount — количество прерванных multipart-сессий
	AbortedCount int
	// Errors — количество ошибок при обработке сессий
	Errors int
	// Duration — длительность выполнения
	Duration time.Duration
}

// ReaperService — фоновая очистка брошенных multipart-сессий.
type ReaperService struct {
	repo     repository.TransferRepository
	store    objectstore.Gateway
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex // защита от параллельного запуска RunOnce
	cancel context.CancelFunc

	// now подменяется в тестах
	now func() time.Time
}

// NewReaperService создаёт сервис очистки брошенных сессий.
func NewReaperService(
	repo repository.TransferRepository,
	store objectstore.Gateway,
	interval time.Duration,
	logger *slog.Logger,
) *ReaperService {
	return &ReaperService{
		repo:     repo,
		store:    store,
		interval: interval,
		logger:   logger.With(slog.String("component", "reaper")),
		now:      time.Now,
	}
}

// Start запускает фоновую горутину reaper с периодическим тикером.
// Вызывается один раз при старте приложения.
func (r *ReaperService) Start(ctx context.Context) {
	reaperCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	go r.run(reaperCtx)

	r.logger.Info("Reaper запущен",
		slog.String("interval", r.interval.String()),
	)
}

// Stop останавливает фоновый процесс reaper.
func (r *ReaperService) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.logger.Info("Reaper остановлен")
}

// run — основной цикл фоновой горутины.
func (r *ReaperService) run(ctx context.Context) {
	// Первый запуск — сразу после старта
	r.RunOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce выполняет один цикл очистки.
// Потокобезопасен: mutex защищает от параллельного запуска.
func (r *ReaperService) RunOnce(ctx context.Context) *ReaperResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	result := &ReaperResult{}

	r.logger.Debug("Reaper запуск начат")

	records, err := r.repo.ListExpiredUploads(ctx, r.now(), reaperBatchSize)
	if err != nil {
		r.logger.Error("Reaper: ошибка выборки брошенных сессий",
			slog.String("error", err.Error()),
		)
		result.Errors++
		return result
	}

	for _, rec := range records {
		if err := r.store.AbortMultipartUpload(ctx, rec.StorageKey, rec.UploadID); err != nil {
			r.logger.Error("Reaper: ошибка прерывания multipart-сессии",
				slog.String("short_code", rec.ShortCode),
				slog.String("storage_key", rec.StorageKey),
				slog.String("error", err.Error()),
			)
			result.Errors++
			continue
		}

		// upload_id очищается только после успешного abort:
		// при сбое сессия попадёт в следующий цикл
		if err := r.repo.ClearUploadSession(ctx, rec.ShortCode); err != nil {
			r.logger.Error("Reaper: ошибка очистки upload_id",
				slog.String("short_code", rec.ShortCode),
				slog.String("error", err.Error()),
			)
			result.Errors++
			continue
		}

		r.logger.Debug("Reaper: multipart-сессия прервана",
			slog.String("short_code", rec.ShortCode),
			slog.String("storage_key", rec.StorageKey),
		)
		result.AbortedCount++
	}

	result.Duration = time.Since(start)

	reaperRunsTotal.Inc()
	reaperAbortedTotal.Add(float64(result.AbortedCount))
	reaperDurationSeconds.Observe(result.Duration.Seconds())

	r.logger.Info("Reaper завершён",
		slog.Int("aborted", result.AbortedCount),
		slog.Int("errors", result.Errors),
		slog.Duration("duration", result.Duration),
	)

	return result
}

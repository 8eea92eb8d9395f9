// Пакет service — бизнес-логика Transfer Module.
// Центральный компонент — UploadCoordinator: оркестрация жизненного цикла
// chunked multipart upload (init → chunk* → complete) и одношаговое
// создание message-передач.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/gotransfer/internal/domain/model"
	"github.com/bigkaa/gotransfer/internal/repository"
	"github.com/bigkaa/gotransfer/internal/storage/objectstore"
)

// maxCodeAttempts — предел повторной генерации short code при коллизии.
const maxCodeAttempts = 5

// Метрики координатора загрузок
var (
	transfersCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tm_transfers_created_total",
			Help: "Количество созданных передач по типам",
		},
		[]string{"kind"},
	)

	chunksUploadedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tm_chunks_uploaded_total",
			Help: "Количество успешно загруженных чанков",
		},
	)

	uploadsCompletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tm_uploads_completed_total",
			Help: "Количество завершённых multipart upload",
		},
	)

	codeCollisionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tm_code_collisions_total",
			Help: "Количество коллизий short code при генерации",
		},
	)
)

// RecordCache — кэш записей передач (best-effort поверх Redis).
type RecordCache interface {
	Get(ctx context.Context, shortCode string) (*model.TransferRecord, error)
	Set(ctx context.Context, rec *model.TransferRecord) error
	Delete(ctx context.Context, shortCode string) error
}

// InitResult — результат инициализации файловой передачи.
type InitResult struct {
	ShortCode  string
	VisitCode  string
	UploadID   string
	ChunkCount int
	ChunkSize  int64
}

// CompleteResult — результат завершения передачи (file complete / message create).
type CompleteResult struct {
	ShortCode string
	VisitCode string
	ShortLink string
	ExpiresAt time.Time
}

// UploadCoordinator оркестрирует жизненный цикл передач.
// Stateless: всё состояние в PostgreSQL и S3, экземпляры
// взаимозаменяемы между репликами.
type UploadCoordinator struct {
	repo   repository.TransferRepository
	store  objectstore.Gateway
	cache  RecordCache
	codes  CodeGenerator
	logger *slog.Logger

	maxFileSize      int64
	chunkSize        int64
	shortLinkBaseURL string

	// now подменяется в тестах
	now func() time.Time
}

// NewUploadCoordinator создаёт координатор загрузок.
func NewUploadCoordinator(
	repo repository.TransferRepository,
	store objectstore.Gateway,
	cache RecordCache,
	codes CodeGenerator,
	logger *slog.Logger,
	maxFileSize, chunkSize int64,
	shortLinkBaseURL string,
) *UploadCoordinator {
	return &UploadCoordinator{
		repo:             repo,
		store:            store,
		cache:            cache,
		codes:            codes,
		logger:           logger,
		maxFileSize:      maxFileSize,
		chunkSize:        chunkSize,
		shortLinkBaseURL: shortLinkBaseURL,
		now:              time.Now,
	}
}

// InitFileUpload открывает файловую передачу: генерирует коды, создаёт
// multipart-сессию в S3 и сохраняет запись в состоянии Initiated.
// При коллизии short_code сессия прерывается и генерация повторяется
// (ограниченное число попыток).
func (c *UploadCoordinator) InitFileUpload(ctx context.Context, fileName string, fileSize int64, mimeType, expiration string) (*InitResult, error) {
	if fileName == "" {
		return nil, errValidation("не указано имя файла")
	}
	if fileSize <= 0 {
		return nil, errValidation("размер файла должен быть положительным")
	}
	if fileSize > c.maxFileSize {
		return nil, errFileTooLarge(fmt.Sprintf("размер файла %d байт превышает лимит %d байт", fileSize, c.maxFileSize))
	}

	visitCode, err := c.codes.VisitCode()
	if err != nil {
		return nil, errInternal("ошибка генерации кода доступа")
	}

	now := c.now()
	expiresAt := ComputeDeadline(expiration, now)
	chunkCount := int((fileSize + c.chunkSize - 1) / c.chunkSize)

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		shortCode, err := c.codes.ShortCode()
		if err != nil {
			return nil, errInternal("ошибка генерации short code")
		}
		storageKey := fmt.Sprintf("files/%s/%s", shortCode, fileName)

		uploadID, err := c.store.CreateMultipartUpload(ctx, storageKey, mimeType)
		if err != nil {
			c.logger.Error("Ошибка создания multipart-сессии",
				slog.String("storage_key", storageKey),
				slog.String("error", err.Error()),
			)
			return nil, errBackend("хранилище недоступно, повторите попытку")
		}

		rec := &model.TransferRecord{
			ShortCode:      shortCode,
			VisitCode:      visitCode,
			Kind:           model.KindFile,
			FileName:       fileName,
			FileSize:       fileSize,
			StorageKey:     storageKey,
			MimeType:       mimeType,
			UploadID:       uploadID,
			ChunkCount:     chunkCount,
			UploadedChunks: map[int]string{},
			ExpiresAt:      expiresAt,
			CreatedAt:      now,
		}

		if err := c.repo.Create(ctx, rec); err != nil {
			// Коллизия short_code: сессия привязана к storage_key со старым
			// кодом — прерываем её и пробуем заново с новым кодом.
			if errors.Is(err, repository.ErrDuplicateCode) {
				codeCollisionsTotal.Inc()
				c.logger.Warn("Коллизия short code, повторная генерация",
					slog.String("short_code", shortCode),
					slog.Int("attempt", attempt+1),
				)
				if abortErr := c.store.AbortMultipartUpload(ctx, storageKey, uploadID); abortErr != nil {
					c.logger.Error("Ошибка прерывания multipart-сессии после коллизии",
						slog.String("storage_key", storageKey),
						slog.String("error", abortErr.Error()),
					)
				}
				continue
			}
			return nil, errInternal("ошибка сохранения записи передачи")
		}

		transfersCreatedTotal.WithLabelValues(string(model.KindFile)).Inc()
		c.logger.Info("Файловая передача инициализирована",
			slog.String("short_code", shortCode),
			slog.String("file_name", fileName),
			slog.Int64("file_size", fileSize),
			slog.Int("chunk_count", chunkCount),
			slog.Time("expires_at", expiresAt),
		)

		return &InitResult{
			ShortCode:  shortCode,
			VisitCode:  visitCode,
			UploadID:   uploadID,
			ChunkCount: chunkCount,
			ChunkSize:  c.chunkSize,
		}, nil
	}

	return nil, errInternal("не удалось сгенерировать уникальный short code")
}

// UploadChunk загружает один чанк файловой передачи.
// Индексы чанков 0-based, номера частей S3 1-based (index + 1).
// Повторная загрузка уже записанного индекса идемпотентна:
// возвращается сохранённый ETag без обращения к S3.
func (c *UploadCoordinator) UploadChunk(ctx context.Context, shortCode string, chunkIndex int, body io.ReadSeeker) (string, error) {
	rec, err := c.getRecord(ctx, shortCode)
	if err != nil {
		return "", err
	}
	if rec.IsExpired(c.now()) {
		return "", errGone("срок жизни передачи истёк")
	}
	if !rec.HasActiveUpload() {
		return "", errConflict("передача не принимает чанки")
	}
	if chunkIndex < 0 || chunkIndex >= rec.ChunkCount {
		return "", errValidation(fmt.Sprintf("индекс чанка %d вне диапазона [0, %d)", chunkIndex, rec.ChunkCount))
	}

	// Идемпотентный retry: чанк уже записан
	if etag, ok := rec.ChunkUploaded(chunkIndex); ok {
		return etag, nil
	}

	etag, err := c.store.UploadPart(ctx, rec.StorageKey, rec.UploadID, chunkIndex+1, body)
	if err != nil {
		c.logger.Error("Ошибка загрузки чанка в S3",
			slog.String("short_code", shortCode),
			slog.Int("chunk_index", chunkIndex),
			slog.String("error", err.Error()),
		)
		return "", errBackend("ошибка загрузки чанка, повторите попытку")
	}

	if err := c.repo.AddChunk(ctx, shortCode, chunkIndex, etag); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", errNotFound("передача не найдена")
		}
		return "", errInternal("ошибка сохранения чанка")
	}
	c.invalidateCache(ctx, shortCode)

	chunksUploadedTotal.Inc()
	c.logger.Debug("Чанк загружен",
		slog.String("short_code", shortCode),
		slog.Int("chunk_index", chunkIndex),
	)
	return etag, nil
}

// CompleteUpload завершает файловую передачу: проверяет полноту карты
// чанков, собирает объект в S3 и фиксирует completed_at.
// Повторный вызов для уже завершённой передачи возвращает тот же результат.
func (c *UploadCoordinator) CompleteUpload(ctx context.Context, shortCode string) (*CompleteResult, error) {
	rec, err := c.getRecord(ctx, shortCode)
	if err != nil {
		return nil, err
	}
	if rec.IsExpired(c.now()) {
		return nil, errGone("срок жизни передачи истёк")
	}
	if rec.Kind != model.KindFile {
		return nil, errConflict("передача не является файловой")
	}
	if rec.CompletedAt != nil {
		// Идемпотентный retry завершения
		return c.completeResult(rec), nil
	}
	if rec.UploadID == "" {
		return nil, errConflict("multipart-сессия передачи закрыта")
	}

	if uploaded := len(rec.UploadedChunks); uploaded != rec.ChunkCount {
		return nil, errConflict(fmt.Sprintf("загружено %d из %d чанков", uploaded, rec.ChunkCount))
	}
	// Совпадение количества не гарантирует непрерывность индексов —
	// дубликат индекса в карте маскировал бы пропуск.
	if missing := rec.MissingChunkIndex(); missing >= 0 {
		return nil, errConflict(fmt.Sprintf("отсутствует чанк %d", missing))
	}

	parts := make([]objectstore.Part, 0, rec.ChunkCount)
	for idx, etag := range rec.UploadedChunks {
		parts = append(parts, objectstore.Part{Number: idx + 1, ETag: etag})
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].Number < parts[j].Number })

	if err := c.store.CompleteMultipartUpload(ctx, rec.StorageKey, rec.UploadID, parts); err != nil {
		// Запись не меняется: клиент может повторить complete
		c.logger.Error("Ошибка завершения multipart upload",
			slog.String("short_code", shortCode),
			slog.String("error", err.Error()),
		)
		return nil, errBackend("ошибка сборки файла, повторите попытку")
	}

	if err := c.repo.MarkCompleted(ctx, shortCode, c.now()); err != nil {
		// Конкурентный complete уже зафиксировал завершение
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, errInternal("ошибка фиксации завершения передачи")
		}
	}
	c.invalidateCache(ctx, shortCode)

	uploadsCompletedTotal.Inc()
	c.logger.Info("Передача завершена",
		slog.String("short_code", shortCode),
		slog.String("file_name", rec.FileName),
		slog.Int64("file_size", rec.FileSize),
	)
	return c.completeResult(rec), nil
}

// CreateMessage создаёт message-передачу за один шаг, минуя S3.
func (c *UploadCoordinator) CreateMessage(ctx context.Context, content, expiration string) (*CompleteResult, error) {
	if content == "" {
		return nil, errValidation("не указан текст сообщения")
	}

	visitCode, err := c.codes.VisitCode()
	if err != nil {
		return nil, errInternal("ошибка генерации кода доступа")
	}

	now := c.now()
	expiresAt := ComputeDeadline(expiration, now)

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		shortCode, err := c.codes.ShortCode()
		if err != nil {
			return nil, errInternal("ошибка генерации short code")
		}

		rec := &model.TransferRecord{
			ShortCode:      shortCode,
			VisitCode:      visitCode,
			Kind:           model.KindMessage,
			UploadedChunks: map[int]string{},
			MessageContent: content,
			ExpiresAt:      expiresAt,
			CreatedAt:      now,
		}

		if err := c.repo.Create(ctx, rec); err != nil {
			if errors.Is(err, repository.ErrDuplicateCode) {
				codeCollisionsTotal.Inc()
				continue
			}
			return nil, errInternal("ошибка сохранения записи передачи")
		}

		transfersCreatedTotal.WithLabelValues(string(model.KindMessage)).Inc()
		c.logger.Info("Message-передача создана",
			slog.String("short_code", shortCode),
			slog.Time("expires_at", expiresAt),
		)
		return c.completeResult(rec), nil
	}

	return nil, errInternal("не удалось сгенерировать уникальный short code")
}

// completeResult формирует ответ с короткой ссылкой.
func (c *UploadCoordinator) completeResult(rec *model.TransferRecord) *CompleteResult {
	return &CompleteResult{
		ShortCode: rec.ShortCode,
		VisitCode: rec.VisitCode,
		ShortLink: c.shortLinkBaseURL + "/" + rec.ShortCode,
		ExpiresAt: rec.ExpiresAt,
	}
}

// getRecord возвращает запись по short_code из БД.
// Путь загрузки всегда идёт в PostgreSQL: карта чанков меняется
// конкурентно, кэш здесь был бы источником потерянных обновлений.
func (c *UploadCoordinator) getRecord(ctx context.Context, shortCode string) (*model.TransferRecord, error) {
	rec, err := c.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errNotFound("передача не найдена")
		}
		return nil, errInternal("ошибка чтения записи передачи")
	}
	return rec, nil
}

// invalidateCache удаляет запись из кэша best-effort.
func (c *UploadCoordinator) invalidateCache(ctx context.Context, shortCode string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Delete(ctx, shortCode); err != nil {
		c.logger.Warn("Ошибка инвалидации кэша",
			slog.String("short_code", shortCode),
			slog.String("error", err.Error()),
		)
	}
}

package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/gotransfer/internal/domain/model"
	"github.com/bigkaa/gotransfer/internal/repository"
	"github.com/bigkaa/gotransfer/internal/storage/cache"
	"github.com/bigkaa/gotransfer/internal/storage/objectstore"
)

// Метрики сервиса получения
var (
	retrievalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tm_retrievals_total",
			Help: "Количество запросов получения передач по результату",
		},
		[]string{"result"},
	)

	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tm_cache_lookups_total",
			Help: "Количество обращений к кэшу записей по уровню и результату",
		},
		[]string{"layer", "result"},
	)
)

// RetrieveResult — содержимое передачи для авторизованного получателя.
// Для file-передач заполнены файловые поля и DownloadURL,
// для message — MessageContent.
type RetrieveResult struct {
	Kind           model.TransferKind
	FileName       string
	FileSize       int64
	MimeType       string
	DownloadURL    string
	MessageContent string
	ExpiresAt      time.Time
}

// LocalCache — per-instance LRU-кэш записей для горячего пути коротких ссылок.
type LocalCache interface {
	Get(shortCode string) (*model.TransferRecord, bool)
	Add(rec *model.TransferRecord)
	Remove(shortCode string)
}

// RetrievalService проверяет коды доступа, следит за сроком жизни
// и выдаёт содержимое передач.
type RetrievalService struct {
	repo   repository.TransferRepository
	store  objectstore.Gateway
	cache  RecordCache
	local  LocalCache
	logger *slog.Logger

	presignTTL  time.Duration
	frontendURL string

	// now подменяется в тестах
	now func() time.Time
}

// NewRetrievalService создаёт сервис получения передач.
func NewRetrievalService(
	repo repository.TransferRepository,
	store objectstore.Gateway,
	recordCache RecordCache,
	local LocalCache,
	logger *slog.Logger,
	presignTTL time.Duration,
	frontendURL string,
) *RetrievalService {
	return &RetrievalService{
		repo:        repo,
		store:       store,
		cache:       recordCache,
		local:       local,
		logger:      logger,
		presignTTL:  presignTTL,
		frontendURL: frontendURL,
		now:         time.Now,
	}
}

// Retrieve возвращает содержимое передачи после проверки visit code.
// Успешное получение атомарно инкрементирует счётчик доступов.
func (s *RetrievalService) Retrieve(ctx context.Context, shortCode, visitCode string) (*RetrieveResult, error) {
	rec, err := s.lookup(ctx, shortCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			retrievalsTotal.WithLabelValues("not_found").Inc()
			return nil, errNotFound("ресурс не найден")
		}
		return nil, errInternal("ошибка чтения записи передачи")
	}

	if rec.IsExpired(s.now()) {
		retrievalsTotal.WithLabelValues("expired").Inc()
		return nil, errGone("срок жизни передачи истёк")
	}

	if !visitCodeMatches(rec.VisitCode, visitCode) {
		retrievalsTotal.WithLabelValues("forbidden").Inc()
		return nil, errForbidden("неверный код доступа")
	}

	result := &RetrieveResult{
		Kind:      rec.Kind,
		ExpiresAt: rec.ExpiresAt,
	}

	switch rec.Kind {
	case model.KindFile:
		// Незавершённый upload не собран в объект — скачивать нечего
		if rec.CompletedAt == nil {
			retrievalsTotal.WithLabelValues("incomplete").Inc()
			return nil, errConflict("загрузка файла не завершена")
		}
		url, err := s.store.PresignDownload(rec.StorageKey, rec.FileName, s.presignTTL)
		if err != nil {
			s.logger.Error("Ошибка генерации presigned URL",
				slog.String("short_code", shortCode),
				slog.String("error", err.Error()),
			)
			return nil, errBackend("хранилище недоступно, повторите попытку")
		}
		result.FileName = rec.FileName
		result.FileSize = rec.FileSize
		result.MimeType = rec.MimeType
		result.DownloadURL = url
	case model.KindMessage:
		result.MessageContent = rec.MessageContent
	default:
		return nil, errInternal(fmt.Sprintf("неизвестный тип передачи %q", rec.Kind))
	}

	if err := s.repo.RegisterAccess(ctx, shortCode, s.now()); err != nil {
		// Статистика вторична относительно выдачи содержимого
		s.logger.Warn("Ошибка обновления статистики доступа",
			slog.String("short_code", shortCode),
			slog.String("error", err.Error()),
		)
	}

	retrievalsTotal.WithLabelValues("ok").Inc()
	s.logger.Info("Передача выдана получателю",
		slog.String("short_code", shortCode),
		slog.String("kind", string(rec.Kind)),
	)
	return result, nil
}

// RedirectURL возвращает URL frontend-страницы для короткой ссылки /s/<code>.
// Варианты: not-found, expired, прямой переход при верном visit code,
// страница ввода кода доступа в остальных случаях.
func (s *RetrievalService) RedirectURL(ctx context.Context, shortCode, visitCode string) string {
	rec, err := s.lookup(ctx, shortCode)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("Ошибка чтения записи для короткой ссылки",
				slog.String("short_code", shortCode),
				slog.String("error", err.Error()),
			)
		}
		return s.frontendURL + "/not-found"
	}

	if rec.IsExpired(s.now()) {
		return s.frontendURL + "/expired"
	}

	if visitCode != "" && visitCodeMatches(rec.VisitCode, visitCode) {
		if rec.Kind == model.KindFile {
			return fmt.Sprintf("%s/file/%s?visitCode=%s", s.frontendURL, shortCode, visitCode)
		}
		return fmt.Sprintf("%s/message/%s?visitCode=%s", s.frontendURL, shortCode, visitCode)
	}

	return fmt.Sprintf("%s/access/%s", s.frontendURL, shortCode)
}

// lookup ищет запись по уровням: LRU → Redis → PostgreSQL.
// Найденная в БД запись прогревает оба кэша.
func (s *RetrievalService) lookup(ctx context.Context, shortCode string) (*model.TransferRecord, error) {
	if s.local != nil {
		if rec, ok := s.local.Get(shortCode); ok {
			cacheLookupsTotal.WithLabelValues("lru", "hit").Inc()
			return rec, nil
		}
		cacheLookupsTotal.WithLabelValues("lru", "miss").Inc()
	}

	if s.cache != nil {
		rec, err := s.cache.Get(ctx, shortCode)
		switch {
		case err == nil:
			cacheLookupsTotal.WithLabelValues("redis", "hit").Inc()
			if s.local != nil {
				s.local.Add(rec)
			}
			return rec, nil
		case errors.Is(err, cache.ErrCacheMiss):
			cacheLookupsTotal.WithLabelValues("redis", "miss").Inc()
		default:
			// Redis недоступен — идём в БД
			cacheLookupsTotal.WithLabelValues("redis", "error").Inc()
			s.logger.Warn("Ошибка чтения из Redis",
				slog.String("short_code", shortCode),
				slog.String("error", err.Error()),
			)
		}
	}

	rec, err := s.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, rec); err != nil {
			s.logger.Warn("Ошибка записи в Redis",
				slog.String("short_code", shortCode),
				slog.String("error", err.Error()),
			)
		}
	}
	if s.local != nil {
		s.local.Add(rec)
	}
	return rec, nil
}

// visitCodeMatches сравнивает коды доступа за константное время.
func visitCodeMatches(expected, provided string) bool {
	if provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) == 1
}

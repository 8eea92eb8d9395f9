package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/gotransfer/internal/domain/model"
)

// transferColumns — список столбцов таблицы transfers для SELECT-запросов.
// DRY: одно место для всех SELECT'ов.
const transferColumns = `short_code, visit_code, kind, file_name, file_size,
	storage_key, mime_type, upload_id, chunk_count, uploaded_chunks,
	message_content, expires_at, created_at, completed_at,
	access_count, last_accessed_at`

// TransferRepository — интерфейс доступа к записям передач.
type TransferRepository interface {
	// Create сохраняет новую запись передачи.
	// Возвращает ErrDuplicateCode при коллизии short_code.
	Create(ctx context.Context, rec *model.TransferRecord) error
	// GetByShortCode возвращает запись по short_code или ErrNotFound.
	GetByShortCode(ctx context.Context, shortCode string) (*model.TransferRecord, error)
	// AddChunk атомарно добавляет пару (index, etag) в карту загруженных чанков.
	// Уже записанный индекс не перезаписывается (первый ETag сохраняется) —
	// конкурентные загрузки одного чанка сходятся без потери данных.
	AddChunk(ctx context.Context, shortCode string, index int, etag string) error
	// MarkCompleted фиксирует завершение multipart upload.
	MarkCompleted(ctx context.Context, shortCode string, completedAt time.Time) error
	// RegisterAccess атомарно инкрементирует счётчик доступов
	// и обновляет время последнего доступа.
	RegisterAccess(ctx context.Context, shortCode string, accessedAt time.Time) error
	// ListExpiredUploads возвращает истёкшие незавершённые file-передачи
	// с активной multipart-сессией (кандидаты на abort для reaper).
	ListExpiredUploads(ctx context.Context, now time.Time, limit int) ([]*model.TransferRecord, error)
	// ClearUploadSession очищает upload_id после abort multipart-сессии.
	ClearUploadSession(ctx context.Context, shortCode string) error
}

// transferRepo — реализация TransferRepository через pgx.
type transferRepo struct {
	db DBTX
}

// NewTransferRepository создаёт репозиторий передач.
func NewTransferRepository(db DBTX) TransferRepository {
	return &transferRepo{db: db}
}

// Create сохраняет новую запись передачи.
func (r *transferRepo) Create(ctx context.Context, rec *model.TransferRecord) error {
	query := `
		INSERT INTO transfers (
			short_code, visit_code, kind, file_name, file_size,
			storage_key, mime_type, upload_id, chunk_count, uploaded_chunks,
			message_content, expires_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	chunks, err := chunksToJSON(rec.UploadedChunks)
	if err != nil {
		return fmt.Errorf("сериализация карты чанков: %w", err)
	}

	_, err = r.db.Exec(ctx, query,
		rec.ShortCode, rec.VisitCode, string(rec.Kind), rec.FileName, rec.FileSize,
		rec.StorageKey, rec.MimeType, rec.UploadID, rec.ChunkCount, chunks,
		rec.MessageContent, rec.ExpiresAt, rec.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCode
		}
		return fmt.Errorf("ошибка создания записи передачи: %w", err)
	}
	return nil
}

// GetByShortCode возвращает запись по short_code или ErrNotFound.
func (r *transferRepo) GetByShortCode(ctx context.Context, shortCode string) (*model.TransferRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM transfers WHERE short_code = $1`, transferColumns)

	rec, err := scanTransfer(r.db.QueryRow(ctx, query, shortCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения записи передачи: %w", err)
	}
	return rec, nil
}

// AddChunk атомарно добавляет пару (index, etag) в jsonb-карту чанков.
// Слияние выполняет PostgreSQL (оператор ||), read-modify-write на стороне
// приложения отсутствует — конкурентные чанки одной передачи не теряются.
func (r *transferRepo) AddChunk(ctx context.Context, shortCode string, index int, etag string) error {
	query := `
		UPDATE transfers
		SET uploaded_chunks = uploaded_chunks || jsonb_build_object($2::text, $3::text)
		WHERE short_code = $1 AND NOT (uploaded_chunks ? $2::text)`

	tag, err := r.db.Exec(ctx, query, shortCode, strconv.Itoa(index), etag)
	if err != nil {
		return fmt.Errorf("ошибка записи чанка %d: %w", index, err)
	}
	if tag.RowsAffected() == 0 {
		// Запись отсутствует либо индекс уже записан конкурентным запросом.
		// Различаем: отсутствие записи — ошибка, дубликат — no-op.
		exists, err := r.exists(ctx, shortCode)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
	}
	return nil
}

// MarkCompleted фиксирует завершение multipart upload.
func (r *transferRepo) MarkCompleted(ctx context.Context, shortCode string, completedAt time.Time) error {
	query := `
		UPDATE transfers
		SET completed_at = $2
		WHERE short_code = $1 AND completed_at IS NULL`

	tag, err := r.db.Exec(ctx, query, shortCode, completedAt)
	if err != nil {
		return fmt.Errorf("ошибка фиксации завершения передачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RegisterAccess атомарно инкрементирует счётчик доступов.
// Инкремент выполняет PostgreSQL — конкурентные получения не теряют обновления.
func (r *transferRepo) RegisterAccess(ctx context.Context, shortCode string, accessedAt time.Time) error {
	query := `
		UPDATE transfers
		SET access_count = access_count + 1, last_accessed_at = $2
		WHERE short_code = $1`

	tag, err := r.db.Exec(ctx, query, shortCode, accessedAt)
	if err != nil {
		return fmt.Errorf("ошибка обновления статистики доступа: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListExpiredUploads возвращает кандидатов на abort multipart-сессии:
// file-передачи с истёкшим дедлайном, активным upload_id и без completed_at.
func (r *transferRepo) ListExpiredUploads(ctx context.Context, now time.Time, limit int) ([]*model.TransferRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM transfers
		WHERE kind = 'file'
		  AND upload_id <> ''
		  AND completed_at IS NULL
		  AND expires_at < $1
		ORDER BY expires_at
		LIMIT $2`, transferColumns)

	rows, err := r.db.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки брошенных сессий: %w", err)
	}
	defer rows.Close()

	var result []*model.TransferRecord
	for rows.Next() {
		rec, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи передачи: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}

// ClearUploadSession очищает upload_id после abort multipart-сессии.
func (r *transferRepo) ClearUploadSession(ctx context.Context, shortCode string) error {
	query := `UPDATE transfers SET upload_id = '' WHERE short_code = $1`

	tag, err := r.db.Exec(ctx, query, shortCode)
	if err != nil {
		return fmt.Errorf("ошибка очистки multipart-сессии: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// exists проверяет наличие записи по short_code.
func (r *transferRepo) exists(ctx context.Context, shortCode string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM transfers WHERE short_code = $1)`, shortCode,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки записи передачи: %w", err)
	}
	return exists, nil
}

// scanTransfer сканирует одну строку transfers в модель.
func scanTransfer(row pgx.Row) (*model.TransferRecord, error) {
	rec := &model.TransferRecord{}
	var kind string
	var chunksRaw []byte

	err := row.Scan(
		&rec.ShortCode, &rec.VisitCode, &kind, &rec.FileName, &rec.FileSize,
		&rec.StorageKey, &rec.MimeType, &rec.UploadID, &rec.ChunkCount, &chunksRaw,
		&rec.MessageContent, &rec.ExpiresAt, &rec.CreatedAt, &rec.CompletedAt,
		&rec.AccessCount, &rec.LastAccessedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Kind = model.TransferKind(kind)
	rec.UploadedChunks, err = chunksFromJSON(chunksRaw)
	if err != nil {
		return nil, fmt.Errorf("десериализация карты чанков: %w", err)
	}
	return rec, nil
}

// chunksToJSON сериализует карту чанков в jsonb-представление.
// Ключи JSON — строки, индексы конвертируются через strconv.
func chunksToJSON(chunks map[int]string) ([]byte, error) {
	m := make(map[string]string, len(chunks))
	for idx, etag := range chunks {
		m[strconv.Itoa(idx)] = etag
	}
	return json.Marshal(m)
}

// chunksFromJSON десериализует jsonb-карту чанков в map[int]string.
func chunksFromJSON(raw []byte) (map[int]string, error) {
	if len(raw) == 0 {
		return map[int]string{}, nil
	}

	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}

	chunks := make(map[int]string, len(m))
	for key, etag := range m {
		idx, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("некорректный индекс чанка %q", key)
		}
		chunks[idx] = etag
	}
	return chunks, nil
}

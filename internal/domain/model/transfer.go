// Пакет model — доменные модели Transfer Module.
// TransferRecord — маппинг таблицы transfers (одна запись на логическую передачу).
package model

import "time"

// TransferKind — тип передачи: файл (chunked multipart upload в S3)
// или текстовое сообщение (хранится inline в БД).
type TransferKind string

// Допустимые типы передачи.
const (
	KindFile    TransferKind = "file"
	KindMessage TransferKind = "message"
)

// Valid проверяет, что значение TransferKind допустимо.
func (k TransferKind) Valid() bool {
	return k == KindFile || k == KindMessage
}

// TransferRecord — запись передачи в таблице transfers.
// Ровно одна из групп полей (файловая / message_content) заполнена,
// определяется полем Kind.
type TransferRecord struct {
	// ShortCode — публичный идентификатор передачи (8 символов, PK).
	// Входит в короткую ссылку, генерируется при создании, неизменяем.
	ShortCode string
	// VisitCode — код доступа (6 символов, uppercase).
	// Подтверждает право на получение содержимого.
	VisitCode string
	// Kind — тип передачи (file / message), фиксируется при создании.
	Kind TransferKind

	// FileName — оригинальное имя файла (только file)
	FileName string
	// FileSize — размер файла в байтах (только file, > 0)
	FileSize int64
	// StorageKey — ключ объекта в S3: files/<short_code>/<file_name>
	StorageKey string
	// MimeType — MIME-тип файла
	MimeType string
	// UploadID — идентификатор multipart-сессии S3.
	// Пустой для message-передач.
	UploadID string
	// ChunkCount — количество чанков: ceil(FileSize / chunkSize)
	ChunkCount int
	// UploadedChunks — отображение индекс чанка (0-based) → ETag.
	// Размер никогда не превышает ChunkCount, индексы в [0, ChunkCount).
	UploadedChunks map[int]string

	// MessageContent — текст сообщения (только message)
	MessageContent string

	// ExpiresAt — абсолютный дедлайн жизни передачи.
	// Устанавливается один раз при создании, не продлевается.
	ExpiresAt time.Time
	// CreatedAt — время создания записи
	CreatedAt time.Time
	// CompletedAt — время успешного завершения multipart upload.
	// nil — upload не завершён (или message-передача).
	CompletedAt *time.Time

	// AccessCount — количество успешных авторизованных получений
	AccessCount int64
	// LastAccessedAt — время последнего успешного получения
	LastAccessedAt *time.Time
}

// IsExpired возвращает true, если дедлайн строго пройден.
// Равенство now == ExpiresAt НЕ считается истечением.
func (t *TransferRecord) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// HasActiveUpload возвращает true, если запись поддерживает приём чанков:
// file-передача с открытой multipart-сессией, ещё не завершённая.
func (t *TransferRecord) HasActiveUpload() bool {
	return t.Kind == KindFile && t.UploadID != "" && t.CompletedAt == nil
}

// ChunkUploaded возвращает ETag чанка и признак его наличия.
func (t *TransferRecord) ChunkUploaded(index int) (string, bool) {
	etag, ok := t.UploadedChunks[index]
	return etag, ok
}

// MissingChunkIndex возвращает первый отсутствующий индекс чанка
// в диапазоне [0, ChunkCount) или -1, если все чанки на месте.
func (t *TransferRecord) MissingChunkIndex() int {
	for i := 0; i < t.ChunkCount; i++ {
		if _, ok := t.UploadedChunks[i]; !ok {
			return i
		}
	}
	return -1
}

// Пакет objectstore — шлюз к S3-совместимому объектному хранилищу.
// Transfer Module проксирует байты чанков через себя (клиент не получает
// прямой доступ к хранилищу на запись), скачивание выполняется по
// presigned URL.
package objectstore

import (
	"context"
	"io"
	"time"
)

// Part — загруженная часть multipart upload.
// Номера частей S3 начинаются с 1 (индекс чанка + 1).
type Part struct {
	Number int
	ETag   string
}

// Gateway — операции с объектным хранилищем, необходимые Transfer Module.
type Gateway interface {
	// CreateMultipartUpload открывает multipart-сессию и возвращает uploadId.
	CreateMultipartUpload(ctx context.Context, key, contentType string) (string, error)
	// UploadPart загружает одну часть и возвращает её ETag.
	UploadPart(ctx context.Context, key, uploadID string, partNumber int, body io.ReadSeeker) (string, error)
	// CompleteMultipartUpload собирает объект из загруженных частей.
	// Части должны быть отсортированы по возрастанию номера.
	CompleteMultipartUpload(ctx context.Context, key, uploadID string, parts []Part) error
	// AbortMultipartUpload прерывает multipart-сессию и освобождает
	// место, занятое загруженными частями.
	AbortMultipartUpload(ctx context.Context, key, uploadID string) error
	// PresignDownload возвращает временную ссылку на скачивание объекта.
	// fileName подставляется в Content-Disposition ответа хранилища.
	PresignDownload(key, fileName string, ttl time.Duration) (string, error)
}

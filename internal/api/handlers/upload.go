// upload.go — обработчики загрузки Transfer Module.
// Формы разбираются здесь, бизнес-логика — в service.UploadCoordinator.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	apierrors "github.com/bigkaa/gotransfer/internal/api/errors"
	"github.com/bigkaa/gotransfer/internal/api/generated"
	"github.com/bigkaa/gotransfer/internal/service"
)

// multipartFormOverhead — запас к лимиту тела запроса чанка
// на границы multipart-формы и текстовые поля.
const multipartFormOverhead = 1 << 20

// UploadHandler — обработчик endpoints загрузки.
type UploadHandler struct {
	coordinator *service.UploadCoordinator
	chunkSize   int64
	logger      *slog.Logger
}

// NewUploadHandler создаёт обработчик загрузки.
func NewUploadHandler(coordinator *service.UploadCoordinator, chunkSize int64, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		coordinator: coordinator,
		chunkSize:   chunkSize,
		logger:      logger.With(slog.String("component", "upload_handler")),
	}
}

// InitFileUpload — POST /api/upload/file/init.
// Form: file_name, file_size, mime_type, expiration.
func (h *UploadHandler) InitFileUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		apierrors.ValidationError(w, "некорректная форма запроса")
		return
	}

	fileName := r.FormValue("file_name")
	mimeType := r.FormValue("mime_type")
	expiration := r.FormValue("expiration")

	fileSize, err := strconv.ParseInt(r.FormValue("file_size"), 10, 64)
	if err != nil {
		apierrors.ValidationError(w, "file_size должен быть целым числом")
		return
	}

	result, err := h.coordinator.InitFileUpload(r.Context(), fileName, fileSize, mimeType, expiration)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, generated.InitFileUploadResponse{
		ShortCode:  result.ShortCode,
		VisitCode:  result.VisitCode,
		UploadId:   result.UploadID,
		ChunkCount: result.ChunkCount,
		ChunkSize:  result.ChunkSize,
	})
}

// UploadFileChunk — POST /api/upload/file/chunk.
// Multipart form: short_code, chunk_index, chunk (binary).
func (h *UploadHandler) UploadFileChunk(w http.ResponseWriter, r *http.Request) {
	// Лимит тела: один чанк + накладные расходы multipart-формы
	r.Body = http.MaxBytesReader(w, r.Body, h.chunkSize+multipartFormOverhead)

	if err := r.ParseMultipartForm(h.chunkSize + multipartFormOverhead); err != nil {
		apierrors.ValidationError(w, "некорректная multipart-форма или превышен размер чанка")
		return
	}

	shortCode := r.FormValue("short_code")
	if shortCode == "" {
		apierrors.ValidationError(w, "не указан short_code")
		return
	}

	chunkIndex, err := strconv.Atoi(r.FormValue("chunk_index"))
	if err != nil {
		apierrors.ValidationError(w, "chunk_index должен быть целым числом")
		return
	}

	chunk, _, err := r.FormFile("chunk")
	if err != nil {
		apierrors.ValidationError(w, "не указано содержимое чанка (поле chunk)")
		return
	}
	defer chunk.Close()

	etag, err := h.coordinator.UploadChunk(r.Context(), shortCode, chunkIndex, chunk)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, generated.UploadChunkResponse{
		Message:    "чанк загружен",
		ChunkIndex: chunkIndex,
		Etag:       etag,
	})
}

// CompleteFileUpload — POST /api/upload/file/complete.
// Form: short_code.
func (h *UploadHandler) CompleteFileUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		apierrors.ValidationError(w, "некорректная форма запроса")
		return
	}

	shortCode := r.FormValue("short_code")
	if shortCode == "" {
		apierrors.ValidationError(w, "не указан short_code")
		return
	}

	result, err := h.coordinator.CompleteUpload(r.Context(), shortCode)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, generated.CompleteUploadResponse{
		Message:   "передача завершена",
		ShortCode: result.ShortCode,
		VisitCode: result.VisitCode,
		ShortLink: result.ShortLink,
		ExpiresAt: result.ExpiresAt.UTC().Truncate(time.Second),
	})
}

// UploadMessage — POST /api/upload/message.
// Form: content, expiration.
func (h *UploadHandler) UploadMessage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		apierrors.ValidationError(w, "некорректная форма запроса")
		return
	}

	content := r.FormValue("content")
	expiration := r.FormValue("expiration")

	result, err := h.coordinator.CreateMessage(r.Context(), content, expiration)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, generated.UploadMessageResponse{
		ShortCode: result.ShortCode,
		VisitCode: result.VisitCode,
		ShortLink: result.ShortLink,
		ExpiresAt: result.ExpiresAt.UTC().Truncate(time.Second),
	})
}

// writeServiceError преобразует ошибку сервисного слоя в HTTP-ответ.
// Неожиданные ошибки маппятся в 500 без раскрытия деталей.
func writeServiceError(w http.ResponseWriter, err error) {
	var te *service.TransferError
	if errors.As(err, &te) {
		apierrors.WriteError(w, te.StatusCode, te.Code, te.Message)
		return
	}
	apierrors.InternalError(w, "внутренняя ошибка сервиса")
}

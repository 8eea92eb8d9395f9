// handler.go — основной обработчик API, реализующий generated.ServerInterface.
// Объединяет health, upload и transfer обработчики.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bigkaa/gotransfer/internal/api/generated"
)

// APIHandler — основной обработчик API Transfer Module.
// Реализует generated.ServerInterface, делегируя запросы в сервисный слой.
type APIHandler struct {
	health   *HealthHandler
	upload   *UploadHandler
	transfer *TransferHandler
	logger   *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	health *HealthHandler,
	upload *UploadHandler,
	transfer *TransferHandler,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health:   health,
		upload:   upload,
		transfer: transfer,
		logger:   logger.With(slog.String("component", "api_handler")),
	}
}

// --- Health endpoints (делегируются в HealthHandler) ---

// HealthLive — liveness probe.
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe.
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики.
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Upload endpoints (делегируются в UploadHandler) ---

// InitFileUpload — инициализация файловой передачи.
func (h *APIHandler) InitFileUpload(w http.ResponseWriter, r *http.Request) {
	h.upload.InitFileUpload(w, r)
}

// UploadFileChunk — загрузка одного чанка.
func (h *APIHandler) UploadFileChunk(w http.ResponseWriter, r *http.Request) {
	h.upload.UploadFileChunk(w, r)
}

// CompleteFileUpload — завершение файловой передачи.
func (h *APIHandler) CompleteFileUpload(w http.ResponseWriter, r *http.Request) {
	h.upload.CompleteFileUpload(w, r)
}

// UploadMessage — создание message-передачи.
func (h *APIHandler) UploadMessage(w http.ResponseWriter, r *http.Request) {
	h.upload.UploadMessage(w, r)
}

// --- Transfer endpoints (делегируются в TransferHandler) ---

// GetTransfer — получение содержимого передачи.
func (h *APIHandler) GetTransfer(w http.ResponseWriter, r *http.Request, shortCode string, params generated.GetTransferParams) {
	h.transfer.GetTransfer(w, r, shortCode, params)
}

// ShortLinkRedirect — редирект короткой ссылки на frontend.
func (h *APIHandler) ShortLinkRedirect(w http.ResponseWriter, r *http.Request, shortCode string, params generated.ShortLinkRedirectParams) {
	h.transfer.ShortLinkRedirect(w, r, shortCode, params)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

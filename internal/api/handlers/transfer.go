// transfer.go — обработчики получения передач и коротких ссылок.
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/bigkaa/gotransfer/internal/api/generated"
	"github.com/bigkaa/gotransfer/internal/domain/model"
	"github.com/bigkaa/gotransfer/internal/service"
)

// TransferHandler — обработчик получения содержимого передач.
type TransferHandler struct {
	retrieval *service.RetrievalService
	logger    *slog.Logger
}

// NewTransferHandler создаёт обработчик получения передач.
func NewTransferHandler(retrieval *service.RetrievalService, logger *slog.Logger) *TransferHandler {
	return &TransferHandler{
		retrieval: retrieval,
		logger:    logger.With(slog.String("component", "transfer_handler")),
	}
}

// GetTransfer — GET /api/transfer/{short_code}?visit_code=.
// Возвращает метаданные файла с presigned URL или текст сообщения.
func (h *TransferHandler) GetTransfer(w http.ResponseWriter, r *http.Request, shortCode string, params generated.GetTransferParams) {
	visitCode := ""
	if params.VisitCode != nil {
		visitCode = *params.VisitCode
	}

	result, err := h.retrieval.Retrieve(r.Context(), shortCode, visitCode)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := generated.TransferResponse{
		ExpiresAt: result.ExpiresAt.UTC().Truncate(time.Second),
	}

	if result.Kind == model.KindFile {
		resp.Type = generated.File
		resp.FileName = &result.FileName
		resp.FileSize = &result.FileSize
		resp.MimeType = &result.MimeType
		resp.DownloadUrl = &result.DownloadURL
	} else {
		resp.Type = generated.Message
		resp.Content = &result.MessageContent
	}

	writeJSON(w, http.StatusOK, resp)
}

// ShortLinkRedirect — GET /s/{short_code}?visit_code=.
// Редиректит на страницу frontend в зависимости от состояния передачи
// и корректности visit code.
func (h *TransferHandler) ShortLinkRedirect(w http.ResponseWriter, r *http.Request, shortCode string, params generated.ShortLinkRedirectParams) {
	visitCode := ""
	if params.VisitCode != nil {
		visitCode = *params.VisitCode
	}

	target := h.retrieval.RedirectURL(r.Context(), shortCode, visitCode)
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

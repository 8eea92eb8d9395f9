package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/gotransfer/internal/api/generated"
	"github.com/bigkaa/gotransfer/internal/domain/model"
	"github.com/bigkaa/gotransfer/internal/repository"
	"github.com/bigkaa/gotransfer/internal/service"
	"github.com/bigkaa/gotransfer/internal/storage/objectstore"
)

// --- In-memory репозиторий для HTTP-тестов ---

type memTransferRepo struct {
	records map[string]*model.TransferRecord
}

func newMemTransferRepo() *memTransferRepo {
	return &memTransferRepo{records: map[string]*model.TransferRecord{}}
}

func (m *memTransferRepo) Create(_ context.Context, rec *model.TransferRecord) error {
	if _, exists := m.records[rec.ShortCode]; exists {
		return repository.ErrDuplicateCode
	}
	m.records[rec.ShortCode] = rec
	return nil
}

func (m *memTransferRepo) GetByShortCode(_ context.Context, shortCode string) (*model.TransferRecord, error) {
	rec, ok := m.records[shortCode]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return rec, nil
}

func (m *memTransferRepo) AddChunk(_ context.Context, shortCode string, index int, etag string) error {
	rec, ok := m.records[shortCode]
	if !ok {
		return repository.ErrNotFound
	}
	if _, exists := rec.UploadedChunks[index]; !exists {
		rec.UploadedChunks[index] = etag
	}
	return nil
}

func (m *memTransferRepo) MarkCompleted(_ context.Context, shortCode string, completedAt time.Time) error {
	rec, ok := m.records[shortCode]
	if !ok || rec.CompletedAt != nil {
		return repository.ErrNotFound
	}
	rec.CompletedAt = &completedAt
	return nil
}

func (m *memTransferRepo) RegisterAccess(_ context.Context, shortCode string, accessedAt time.Time) error {
	rec, ok := m.records[shortCode]
	if !ok {
		return repository.ErrNotFound
	}
	rec.AccessCount++
	rec.LastAccessedAt = &accessedAt
	return nil
}

func (m *memTransferRepo) ListExpiredUploads(_ context.Context, now time.Time, _ int) ([]*model.TransferRecord, error) {
	var result []*model.TransferRecord
	for _, rec := range m.records {
		if rec.Kind == model.KindFile && rec.UploadID != "" && rec.CompletedAt == nil && now.After(rec.ExpiresAt) {
			result = append(result, rec)
		}
	}
	return result, nil
}

func (m *memTransferRepo) ClearUploadSession(_ context.Context, shortCode string) error {
	rec, ok := m.records[shortCode]
	if !ok {
		return repository.ErrNotFound
	}
	rec.UploadID = ""
	return nil
}

// --- In-memory шлюз S3 ---

type memGateway struct {
	parts map[string]int // uploadID → количество загруженных частей
}

func newMemGateway() *memGateway {
	return &memGateway{parts: map[string]int{}}
}

func (m *memGateway) CreateMultipartUpload(_ context.Context, key, _ string) (string, error) {
	uploadID := "upload-" + key
	m.parts[uploadID] = 0
	return uploadID, nil
}

func (m *memGateway) UploadPart(_ context.Context, _, uploadID string, partNumber int, _ io.ReadSeeker) (string, error) {
	m.parts[uploadID]++
	return fmt.Sprintf("etag-%d", partNumber), nil
}

func (m *memGateway) CompleteMultipartUpload(_ context.Context, _, _ string, _ []objectstore.Part) error {
	return nil
}

func (m *memGateway) AbortMultipartUpload(_ context.Context, _, uploadID string) error {
	delete(m.parts, uploadID)
	return nil
}

func (m *memGateway) PresignDownload(key, _ string, _ time.Duration) (string, error) {
	return "https://s3.test/" + key + "?signed", nil
}

// --- Детерминированный генератор кодов ---

type seqCodeGenerator struct{ n int }

func (g *seqCodeGenerator) ShortCode() (string, error) {
	g.n++
	return fmt.Sprintf("code%04d", g.n), nil
}

func (g *seqCodeGenerator) VisitCode() (string, error) {
	return "VISIT1", nil
}

// newTestServer собирает полный HTTP-стек: handlers → services → in-memory backend.
func newTestServer(t *testing.T) (*httptest.Server, *memTransferRepo) {
	t.Helper()

	logger := slog.Default()
	repo := newMemTransferRepo()
	store := newMemGateway()

	coordinator := service.NewUploadCoordinator(
		repo, store, nil, &seqCodeGenerator{},
		logger,
		1<<30, 5_000_000,
		"https://t.test",
	)
	retrieval := service.NewRetrievalService(
		repo, store, nil, nil,
		logger,
		time.Hour, "https://front.test",
	)

	healthHandler := NewHealthHandler(nil, nil)
	uploadHandler := NewUploadHandler(coordinator, 5_000_000, logger)
	transferHandler := NewTransferHandler(retrieval, logger)
	apiHandler := NewAPIHandler(healthHandler, uploadHandler, transferHandler, logger)

	router := chi.NewRouter()
	generated.HandlerFromMux(apiHandler, router)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, repo
}

// postForm отправляет form-urlencoded запрос и декодирует JSON-ответ в out.
func postForm(t *testing.T, url string, form map[string]string, out any) *http.Response {
	t.Helper()

	values := make([]string, 0, len(form))
	for k, v := range form {
		values = append(values, k+"="+v)
	}
	resp, err := http.Post(url, "application/x-www-form-urlencoded",
		strings.NewReader(strings.Join(values, "&")))
	if err != nil {
		t.Fatalf("ошибка POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("ошибка декодирования ответа: %v", err)
		}
	}
	return resp
}

// postChunk отправляет multipart-запрос загрузки чанка.
func postChunk(t *testing.T, baseURL, shortCode string, index int, data []byte, out any) *http.Response {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("short_code", shortCode)
	_ = mw.WriteField("chunk_index", strconv.Itoa(index))
	fw, _ := mw.CreateFormFile("chunk", "chunk.bin")
	_, _ = fw.Write(data)
	_ = mw.Close()

	resp, err := http.Post(baseURL+"/api/upload/file/chunk", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("ошибка POST chunk: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("ошибка декодирования ответа: %v", err)
		}
	}
	return resp
}

// TestFileUploadLifecycle проверяет полный цикл: init → chunk ×3 → complete → get.
func TestFileUploadLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	// Init: 12 MB / 5 MB → 3 чанка
	var initResp generated.InitFileUploadResponse
	resp := postForm(t, srv.URL+"/api/upload/file/init", map[string]string{
		"file_name":  "report.pdf",
		"file_size":  "12000000",
		"mime_type":  "application/pdf",
		"expiration": "1h",
	}, &initResp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("init вернул статус %d", resp.StatusCode)
	}
	if initResp.ChunkCount != 3 {
		t.Fatalf("chunk_count = %d, ожидался 3", initResp.ChunkCount)
	}

	// Чанки в обратном порядке
	for _, idx := range []int{2, 1, 0} {
		var chunkResp generated.UploadChunkResponse
		resp := postChunk(t, srv.URL, initResp.ShortCode, idx, []byte("data"), &chunkResp)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("chunk %d вернул статус %d", idx, resp.StatusCode)
		}
		if chunkResp.ChunkIndex != idx || chunkResp.Etag == "" {
			t.Errorf("ответ чанка %d неверен: %+v", idx, chunkResp)
		}
	}

	// Complete
	var completeResp generated.CompleteUploadResponse
	resp = postForm(t, srv.URL+"/api/upload/file/complete", map[string]string{
		"short_code": initResp.ShortCode,
	}, &completeResp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("complete вернул статус %d", resp.StatusCode)
	}
	if completeResp.ShortLink != "https://t.test/"+initResp.ShortCode {
		t.Errorf("short_link = %q", completeResp.ShortLink)
	}

	// Get с верным visit code
	getResp, err := http.Get(srv.URL + "/api/transfer/" + initResp.ShortCode + "?visit_code=" + initResp.VisitCode)
	if err != nil {
		t.Fatalf("ошибка GET transfer: %v", err)
	}
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("get вернул статус %d", getResp.StatusCode)
	}

	var transferResp generated.TransferResponse
	if err := json.NewDecoder(getResp.Body).Decode(&transferResp); err != nil {
		t.Fatalf("ошибка декодирования ответа: %v", err)
	}
	if transferResp.Type != generated.File {
		t.Errorf("type = %q, ожидался file", transferResp.Type)
	}
	if transferResp.DownloadUrl == nil || *transferResp.DownloadUrl == "" {
		t.Error("download_url пуст")
	}
}

// TestCompleteIncomplete проверяет 409 при незагруженном чанке.
func TestCompleteIncomplete(t *testing.T) {
	srv, _ := newTestServer(t)

	var initResp generated.InitFileUploadResponse
	postForm(t, srv.URL+"/api/upload/file/init", map[string]string{
		"file_name": "a.bin", "file_size": "12000000", "expiration": "1h",
	}, &initResp)

	// Только чанки 0 и 2
	postChunk(t, srv.URL, initResp.ShortCode, 0, []byte("x"), nil)
	postChunk(t, srv.URL, initResp.ShortCode, 2, []byte("x"), nil)

	resp := postForm(t, srv.URL+"/api/upload/file/complete", map[string]string{
		"short_code": initResp.ShortCode,
	}, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("complete вернул статус %d, ожидался 409", resp.StatusCode)
	}
}

// TestMessageLifecycle проверяет сценарий: создание сообщения → получение →
// Forbidden при неверном коде.
func TestMessageLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	var msgResp generated.UploadMessageResponse
	resp := postForm(t, srv.URL+"/api/upload/message", map[string]string{
		"content":    "hello",
		"expiration": "1h",
	}, &msgResp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload message вернул статус %d", resp.StatusCode)
	}

	// Получение с верным кодом
	getResp, err := http.Get(srv.URL + "/api/transfer/" + msgResp.ShortCode + "?visit_code=" + msgResp.VisitCode)
	if err != nil {
		t.Fatalf("ошибка GET transfer: %v", err)
	}
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("get вернул статус %d", getResp.StatusCode)
	}
	var transferResp generated.TransferResponse
	if err := json.NewDecoder(getResp.Body).Decode(&transferResp); err != nil {
		t.Fatalf("ошибка декодирования ответа: %v", err)
	}
	if transferResp.Type != generated.Message || transferResp.Content == nil || *transferResp.Content != "hello" {
		t.Errorf("содержимое сообщения неверно: %+v", transferResp)
	}

	// Неверный visit code → 403
	badResp, err := http.Get(srv.URL + "/api/transfer/" + msgResp.ShortCode + "?visit_code=WRONG1")
	if err != nil {
		t.Fatalf("ошибка GET transfer: %v", err)
	}
	defer badResp.Body.Close()
	if badResp.StatusCode != http.StatusForbidden {
		t.Errorf("get с неверным кодом вернул статус %d, ожидался 403", badResp.StatusCode)
	}
}

// TestGetTransfer_NotFound проверяет 404 для несуществующего кода.
func TestGetTransfer_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/transfer/missing1?visit_code=VISIT1")
	if err != nil {
		t.Fatalf("ошибка GET transfer: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("статус %d, ожидался 404", resp.StatusCode)
	}
}

// TestShortLinkRedirect проверяет редирект короткой ссылки.
func TestShortLinkRedirect(t *testing.T) {
	srv, _ := newTestServer(t)

	var msgResp generated.UploadMessageResponse
	postForm(t, srv.URL+"/api/upload/message", map[string]string{
		"content": "hi", "expiration": "1h",
	}, &msgResp)

	client := &http.Client{
		CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Get(srv.URL + "/s/" + msgResp.ShortCode)
	if err != nil {
		t.Fatalf("ошибка GET short link: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Fatalf("статус %d, ожидался 307", resp.StatusCode)
	}
	want := "https://front.test/access/" + msgResp.ShortCode
	if got := resp.Header.Get("Location"); got != want {
		t.Errorf("Location = %q, ожидалось %q", got, want)
	}
}

// TestInitValidation проверяет валидацию формы init.
func TestInitValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name       string
		form       map[string]string
		wantStatus int
	}{
		{"нечисловой file_size", map[string]string{"file_name": "a", "file_size": "abc"}, 400},
		{"пустое имя файла", map[string]string{"file_name": "", "file_size": "100"}, 400},
		{"превышение лимита", map[string]string{"file_name": "a", "file_size": "1073741825"}, 413},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postForm(t, srv.URL+"/api/upload/file/init", tt.form, nil)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("статус %d, ожидался %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

// TestHealthLive проверяет liveness probe.
func TestHealthLive(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health/live")
	if err != nil {
		t.Fatalf("ошибка GET /health/live: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("статус %d, ожидался 200", resp.StatusCode)
	}
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/bigkaa/gotransfer/internal/domain/model"
)

// newTestRetrieval создаёт RetrievalService с моками и фиксированным временем.
func newTestRetrieval(repo *mockTransferRepo, store *mockGateway) *RetrievalService {
	s := NewRetrievalService(
		repo, store, nil, nil,
		slog.Default(),
		time.Hour,
		"https://front.example.com",
	)
	s.now = func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

// completedFileRecord — завершённая file-передача для тестов получения.
func completedFileRecord(shortCode string, expiresAt time.Time) *model.TransferRecord {
	completedAt := expiresAt.Add(-30 * time.Minute)
	return &model.TransferRecord{
		ShortCode:      shortCode,
		VisitCode:      "VISIT1",
		Kind:           model.KindFile,
		FileName:       "report.pdf",
		FileSize:       12_000_000,
		StorageKey:     "files/" + shortCode + "/report.pdf",
		MimeType:       "application/pdf",
		UploadID:       "upload-1",
		ChunkCount:     3,
		UploadedChunks: map[int]string{0: "a", 1: "b", 2: "c"},
		ExpiresAt:      expiresAt,
		CompletedAt:    &completedAt,
	}
}

// TestRetrieve_File проверяет выдачу метаданных файла с presigned URL
// и инкремент счётчика доступов.
func TestRetrieve_File(t *testing.T) {
	expires := time.Date(2026, 8, 1, 13, 0, 0, 0, time.UTC)
	repo := newMockTransferRepo()
	rec := completedFileRecord("code0001", expires)
	repo.records["code0001"] = rec

	var gotTTL time.Duration
	store := &mockGateway{
		presignFn: func(key, fileName string, ttl time.Duration) (string, error) {
			gotTTL = ttl
			return "https://s3.example.com/" + key + "?signed", nil
		},
	}
	s := newTestRetrieval(repo, store)

	result, err := s.Retrieve(context.Background(), "code0001", "VISIT1")
	if err != nil {
		t.Fatalf("Retrieve вернул ошибку: %v", err)
	}

	if result.Kind != model.KindFile {
		t.Errorf("Kind = %q, ожидался file", result.Kind)
	}
	if result.FileName != "report.pdf" || result.FileSize != 12_000_000 {
		t.Errorf("метаданные файла неверны: %+v", result)
	}
	if result.DownloadURL == "" {
		t.Error("presigned URL пуст")
	}
	if gotTTL != time.Hour {
		t.Errorf("TTL presigned URL = %v, ожидался 1h", gotTTL)
	}
	if rec.AccessCount != 1 {
		t.Errorf("AccessCount = %d, ожидался 1", rec.AccessCount)
	}
	if rec.LastAccessedAt == nil {
		t.Error("LastAccessedAt не обновлён")
	}
}

// TestRetrieve_Message проверяет сценарий B: message-передача возвращает
// содержимое при верном visit code и Forbidden при неверном.
func TestRetrieve_Message(t *testing.T) {
	expires := time.Date(2026, 8, 1, 13, 0, 0, 0, time.UTC)
	repo := newMockTransferRepo()
	repo.records["msg00001"] = &model.TransferRecord{
		ShortCode:      "msg00001",
		VisitCode:      "VISIT1",
		Kind:           model.KindMessage,
		MessageContent: "hello",
		UploadedChunks: map[int]string{},
		ExpiresAt:      expires,
	}
	s := newTestRetrieval(repo, &mockGateway{})

	result, err := s.Retrieve(context.Background(), "msg00001", "VISIT1")
	if err != nil {
		t.Fatalf("Retrieve вернул ошибку: %v", err)
	}
	if result.Kind != model.KindMessage || result.MessageContent != "hello" {
		t.Errorf("содержимое сообщения неверно: %+v", result)
	}

	_, err = s.Retrieve(context.Background(), "msg00001", "WRONG1")
	var te *TransferError
	if !errors.As(err, &te) || te.StatusCode != 403 {
		t.Fatalf("ожидалась ошибка 403 для неверного кода, получено: %v", err)
	}
}

// TestRetrieve_Errors проверяет таблицу ошибок получения.
func TestRetrieve_Errors(t *testing.T) {
	repo := newMockTransferRepo()
	// Истёкшая передача
	repo.records["old00001"] = completedFileRecord("old00001", time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC))
	// Актуальная передача
	repo.records["code0001"] = completedFileRecord("code0001", time.Date(2026, 8, 1, 13, 0, 0, 0, time.UTC))
	// Незавершённый upload
	incomplete := completedFileRecord("part0001", time.Date(2026, 8, 1, 13, 0, 0, 0, time.UTC))
	incomplete.CompletedAt = nil
	repo.records["part0001"] = incomplete

	s := newTestRetrieval(repo, &mockGateway{})

	tests := []struct {
		name       string
		shortCode  string
		visitCode  string
		wantStatus int
	}{
		{"запись не найдена", "missing1", "VISIT1", 404},
		{"передача истекла", "old00001", "VISIT1", 410},
		{"пустой visit code", "code0001", "", 403},
		{"неверный visit code", "code0001", "WRONG1", 403},
		{"незавершённый upload", "part0001", "VISIT1", 409},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Retrieve(context.Background(), tt.shortCode, tt.visitCode)
			var te *TransferError
			if !errors.As(err, &te) {
				t.Fatalf("ожидалась TransferError, получено: %v", err)
			}
			if te.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, ожидался %d", te.StatusCode, tt.wantStatus)
			}
		})
	}
}

// TestRetrieve_ExpiredAtBoundary проверяет, что ровно в момент дедлайна
// получение ещё работает (строгое now > expiresAt).
func TestRetrieve_ExpiredAtBoundary(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	repo := newMockTransferRepo()
	repo.records["code0001"] = completedFileRecord("code0001", now)

	s := newTestRetrieval(repo, &mockGateway{})
	s.now = func() time.Time { return now }

	if _, err := s.Retrieve(context.Background(), "code0001", "VISIT1"); err != nil {
		t.Fatalf("Retrieve в момент дедлайна вернул ошибку: %v", err)
	}
}

// TestRedirectURL проверяет варианты редиректа короткой ссылки.
func TestRedirectURL(t *testing.T) {
	expires := time.Date(2026, 8, 1, 13, 0, 0, 0, time.UTC)
	repo := newMockTransferRepo()
	repo.records["file0001"] = completedFileRecord("file0001", expires)
	repo.records["msg00001"] = &model.TransferRecord{
		ShortCode: "msg00001", VisitCode: "VISIT1", Kind: model.KindMessage,
		MessageContent: "hi", UploadedChunks: map[int]string{}, ExpiresAt: expires,
	}
	repo.records["old00001"] = completedFileRecord("old00001", time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC))

	s := newTestRetrieval(repo, &mockGateway{})

	tests := []struct {
		name      string
		shortCode string
		visitCode string
		want      string
	}{
		{"не найдено", "missing1", "", "https://front.example.com/not-found"},
		{"истекло", "old00001", "VISIT1", "https://front.example.com/expired"},
		{"файл с верным кодом", "file0001", "VISIT1", "https://front.example.com/file/file0001?visitCode=VISIT1"},
		{"сообщение с верным кодом", "msg00001", "VISIT1", "https://front.example.com/message/msg00001?visitCode=VISIT1"},
		{"без кода — страница ввода", "file0001", "", "https://front.example.com/access/file0001"},
		{"неверный код — страница ввода", "file0001", "WRONG1", "https://front.example.com/access/file0001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.RedirectURL(context.Background(), tt.shortCode, tt.visitCode); got != tt.want {
				t.Errorf("RedirectURL = %q, ожидалось %q", got, tt.want)
			}
		})
	}
}

// TestRetrieve_LocalCacheWarmup проверяет прогрев LRU-кэша из БД.
func TestRetrieve_LocalCacheWarmup(t *testing.T) {
	expires := time.Date(2026, 8, 1, 13, 0, 0, 0, time.UTC)
	repo := newMockTransferRepo()
	repo.records["code0001"] = completedFileRecord("code0001", expires)

	local := NewLocalCache(10, time.Minute)
	s := newTestRetrieval(repo, &mockGateway{})
	s.local = local

	if _, err := s.Retrieve(context.Background(), "code0001", "VISIT1"); err != nil {
		t.Fatalf("Retrieve вернул ошибку: %v", err)
	}

	if _, ok := local.Get("code0001"); !ok {
		t.Error("запись не попала в LRU-кэш после чтения из БД")
	}

	// Удаляем запись из БД: следующее чтение обслуживается кэшем
	delete(repo.records, "code0001")
	if _, err := s.Retrieve(context.Background(), "code0001", "VISIT1"); err != nil {
		t.Fatalf("Retrieve из кэша вернул ошибку: %v", err)
	}
}

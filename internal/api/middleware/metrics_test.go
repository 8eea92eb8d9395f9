package middleware

import "testing"

// TestNormalizePath проверяет нормализацию путей для лейблов метрик.
func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/health/live", "/health/live"},
		{"/health/ready", "/health/ready"},
		{"/metrics", "/metrics"},
		{"/api/upload/file/init", "/api/upload/file/init"},
		{"/api/upload/file/chunk", "/api/upload/file/chunk"},
		{"/api/upload/file/complete", "/api/upload/file/complete"},
		{"/api/upload/message", "/api/upload/message"},
		{"/api/transfer/Ab3xYz9Q", "/api/transfer/{short_code}"},
		{"/s/Ab3xYz9Q", "/s/{short_code}"},
		{"/unknown", "/unknown"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, ожидалось %q", tt.path, got, tt.want)
		}
	}
}

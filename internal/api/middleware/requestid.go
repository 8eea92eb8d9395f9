// requestid.go — middleware присвоения request ID входящим запросам.
// ID берётся из заголовка X-Request-ID (если проставлен API Gateway)
// или генерируется как UUID. Прокидывается в контекст и в ответ.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// requestIDKey — ключ request ID в контексте запроса.
type requestIDKey struct{}

// headerRequestID — имя заголовка request ID.
const headerRequestID = "X-Request-ID"

// RequestID возвращает middleware, присваивающий каждому запросу
// уникальный идентификатор для корреляции логов.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(headerRequestID)
			if id == "" {
				id = uuid.New().String()
			}

			w.Header().Set(headerRequestID, id)
			ctx := context.WithValue(r.Context(), requestIDKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFromContext возвращает request ID из контекста
// или пустую строку, если middleware не применялся.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

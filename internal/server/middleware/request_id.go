package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// HeaderRequestID — заголовок с id запроса.
const HeaderRequestID = "X-Request-Id"

// слишком длинный входящий id не принимаем, генерируем свой
const maxRequestIDLen = 128

type ctxKey struct{}

// RequestID обеспечивает наличие X-Request-Id:
//  1. берёт заголовок из запроса, если он есть;
//  2. иначе генерирует UUID v4;
//  3. кладёт id в заголовок ответа и в контекст (см. RequestIDFromContext).
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(HeaderRequestID)
			if id == "" || len(id) > maxRequestIDLen {
				id = uuid.NewString()
			}
			w.Header().Set(HeaderRequestID, id)

			ctx := context.WithValue(r.Context(), ctxKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFromContext возвращает id запроса или пустую строку.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

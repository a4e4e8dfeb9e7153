// Package middleware — HTTP-мидлвары сервера: request id, логирование,
// метрики, таймаут запроса и перехват паник.
package middleware

import (
	"net/http"
	"time"

	"github.com/IvanChernomyrdin/go-users-api/internal/shared/logger"
)

// ResponseWriter запоминает статус и размер ответа.
type ResponseWriter struct {
	http.ResponseWriter
	Status int
	Size   int
}

func (w *ResponseWriter) WriteHeader(Status int) {
	if w.Status == 0 {
		w.Status = Status
	}
	w.ResponseWriter.WriteHeader(Status)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	if w.Status == 0 {
		w.Status = http.StatusOK
	}
	Size, err := w.ResponseWriter.Write(b)
	w.Size += Size
	return Size, err
}

// StatusCode — статус ответа; если хендлер ничего не записал, это 200.
func (w *ResponseWriter) StatusCode() int {
	if w.Status == 0 {
		return http.StatusOK
	}
	return w.Status
}

// wrap не оборачивает повторно, если внешний мидлвар уже это сделал.
func wrap(w http.ResponseWriter) *ResponseWriter {
	if wr, ok := w.(*ResponseWriter); ok {
		return wr
	}
	return &ResponseWriter{ResponseWriter: w}
}

// LoggerMiddleware пишет строку лога на каждый запрос.
// Ставится после RequestID, чтобы в лог попал id запроса.
func LoggerMiddleware(log *logger.HTTPLogger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wr := wrap(w)
			next.ServeHTTP(wr, r)

			duration := time.Since(start).Seconds() * 1000
			log.LogRequest(r.Method, r.RequestURI, RequestIDFromContext(r.Context()), wr.StatusCode(), wr.Size, duration)
		})
	}
}

package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/IvanChernomyrdin/go-users-api/internal/shared/logger"
	shared "github.com/IvanChernomyrdin/go-users-api/internal/shared/models"
)

// Recover перехватывает панику хендлера: стек уходит в лог,
// клиент получает 500 в общем формате ошибки без деталей.
func Recover(log *logger.HTTPLogger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// ErrAbortHandler — штатный способ оборвать ответ, не глушим
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				requestID := RequestIDFromContext(r.Context())
				log.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("request_id", requestID),
					zap.ByteString("stack", debug.Stack()),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(shared.ErrorResponse{
					Error:     "internal",
					Message:   "Internal server error",
					RequestID: requestID,
				})
			}()

			next.ServeHTTP(w, r)
		})
	}
}

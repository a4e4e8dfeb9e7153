// Package api реализует HTTP-слой сервера users-api.
//
// Пакет отвечает за:
//   - обработку входящих запросов и формирование ответов (JSON, статусы);
//   - строгий разбор тела запроса (лимит размера, запрет неизвестных полей);
//   - маппинг доменных ошибок (service/repository) в HTTP-коды и сообщения.
//
// Регистрация маршрутов вынесена в internal/server/net/http.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/IvanChernomyrdin/go-users-api/internal/server/middleware"
	"github.com/IvanChernomyrdin/go-users-api/internal/server/models"
	"github.com/IvanChernomyrdin/go-users-api/internal/server/service"
	serr "github.com/IvanChernomyrdin/go-users-api/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-users-api/internal/shared/logger"
	shared "github.com/IvanChernomyrdin/go-users-api/internal/shared/models"
)

// Каждый метод если будет возвращать ответ то будет это делать в JSON
// Вынес Content-Type и JSON для удобства
const (
	JsonContentType string = "application/json"
	ContentType     string = "Content-Type"
)

// DefaultMaxBodyBytes — лимит тела запроса, если в конфиге 0.
const DefaultMaxBodyBytes int64 = 1 << 20

// Handler агрегирует зависимости HTTP-слоя и предоставляет методы-хендлеры.
//
// Handler содержит:
//   - Svc: сервисный слой (бизнес-логика);
//   - Log: логгер для записи событий и ошибок;
//   - MaxBodyBytes: максимальный размер тела запроса.
type Handler struct {
	Svc          *service.Services
	Log          *logger.HTTPLogger
	MaxBodyBytes int64
}

// NewHandler создаёт экземпляр Handler с переданными зависимостями.
func NewHandler(svc *service.Services, log *logger.HTTPLogger, maxBodyBytes int64) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &Handler{
		Svc:          svc,
		Log:          log,
		MaxBodyBytes: maxBodyBytes,
	}
}

// BadRequestError — ошибка разбора запроса с безопасным текстом для клиента.
type BadRequestError struct {
	Kind    error
	Message string
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *BadRequestError) Unwrap() error {
	return e.Kind
}

func badJSON(format string, args ...any) error {
	return &BadRequestError{Kind: serr.ErrBadJSON, Message: fmt.Sprintf(format, args...)}
}

// WriteError переводит ошибку в HTTP-ответ.
//
// Соответствие:
//   - ValidationError / ErrInvalidInput / ErrBadJSON -> 400;
//   - ErrPayloadTooLarge -> 413;
//   - ErrNotFound -> 404;
//   - ErrAlreadyExists -> 409;
//   - всё остальное -> 500 без деталей (причина только в логе).
func (h *Handler) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.RequestIDFromContext(r.Context())
	resp := shared.ErrorResponse{RequestID: requestID}
	status := http.StatusInternalServerError

	var (
		verr *models.ValidationError
		berr *BadRequestError
	)
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		resp.Error, resp.Message, resp.Details = "invalid_input", "Validation failed", verr.Fields
	case errors.As(err, &berr):
		status = http.StatusBadRequest
		resp.Error, resp.Message = codeOf(berr.Kind), berr.Message
	case errors.Is(err, service.ErrEmptyPatch):
		status = http.StatusBadRequest
		resp.Error, resp.Message = "invalid_input", "No fields provided to update"
	case errors.Is(err, serr.ErrInvalidInput):
		status = http.StatusBadRequest
		resp.Error, resp.Message = "invalid_input", "Invalid input"
	case errors.Is(err, serr.ErrBadJSON):
		status = http.StatusBadRequest
		resp.Error, resp.Message = "bad_json", "Malformed JSON body"
	case errors.Is(err, serr.ErrPayloadTooLarge):
		status = http.StatusRequestEntityTooLarge
		resp.Error, resp.Message = "payload_too_large", "Request body is too large"
	case errors.Is(err, serr.ErrNotFound):
		status = http.StatusNotFound
		resp.Error, resp.Message = "not_found", "User not found"
	case errors.Is(err, serr.ErrAlreadyExists):
		status = http.StatusConflict
		resp.Error, resp.Message = "already_exists", "Record violates a unique constraint."
	default:
		h.Log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("uri", r.RequestURI),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		resp.Error, resp.Message = "internal", "Internal server error"
	}

	writeJSON(w, status, resp)
}

func codeOf(kind error) string {
	switch {
	case errors.Is(kind, serr.ErrBadJSON):
		return "bad_json"
	case errors.Is(kind, serr.ErrInvalidInput):
		return "invalid_input"
	default:
		return "bad_request"
	}
}

// writeJSON пишет тело ответа. Ошибку кодирования игнорируем:
// заголовок уже отправлен, исправить ответ нельзя.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(ContentType, JsonContentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON читает ровно один JSON-объект из тела запроса.
//
// Ограничения:
//   - тело не больше MaxBodyBytes (иначе ErrPayloadTooLarge);
//   - неизвестные поля запрещены;
//   - после объекта не должно быть других данных.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var (
			syntaxErr *json.SyntaxError
			typeErr   *json.UnmarshalTypeError
			tooLarge  *http.MaxBytesError
		)
		switch {
		case errors.As(err, &tooLarge):
			return serr.ErrPayloadTooLarge
		case errors.Is(err, io.EOF):
			return badJSON("request body must not be empty")
		case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
			return badJSON("request body contains malformed JSON")
		case errors.As(err, &typeErr):
			if typeErr.Field == "" {
				return badJSON("request body contains a value of invalid type")
			}
			return badJSON("field %q has invalid type", typeErr.Field)
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			return badJSON("property %s should not exist", strings.TrimPrefix(err.Error(), "json: unknown field "))
		default:
			return badJSON("request body could not be decoded")
		}
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return serr.ErrPayloadTooLarge
		}
		return badJSON("request body must contain a single JSON object")
	}
	return nil
}

// parseID достаёт {id} из пути. Допускаются только положительные целые.
func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, &BadRequestError{
			Kind:    serr.ErrInvalidInput,
			Message: "Validation failed (numeric string is expected)",
		}
	}
	return id, nil
}

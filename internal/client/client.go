// Package client содержит HTTP-клиент для users-api.
//
// Клиент инкапсулирует базовый URL сервера и настроенный http.Client и
// предоставляет типизированные методы CRUD пользователей и health-проб.
//
// Особенности:
//   - baseURL нормализуется (обрезаются завершающие "/");
//   - по умолчанию добавляется заголовок Accept: application/json;
//   - Content-Type: application/json добавляется только при наличии тела;
//   - 204 No Content считается успехом без чтения тела;
//   - ответы не 2xx превращаются в *APIError, который сопоставляется
//     с общими ошибками через errors.Is (404 -> ErrNotFound и т.д.).
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	serr "github.com/IvanChernomyrdin/go-users-api/internal/shared/errors"
	shared "github.com/IvanChernomyrdin/go-users-api/internal/shared/models"
)

// Client реализует HTTP-клиент для общения с users-api.
type Client struct {
	baseURL   string
	apiPrefix string
	http      *http.Client
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет http.Client (тесты, свой транспорт).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithAPIPrefix задаёт префикс версионированного API (по умолчанию /api/v1).
func WithAPIPrefix(prefix string) Option {
	return func(c *Client) { c.apiPrefix = "/" + strings.Trim(prefix, "/") }
}

// New создаёт клиента. baseURL, например, "http://127.0.0.1:3000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiPrefix: "/api/v1",
		http:      &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError — ответ сервера с кодом не 2xx.
type APIError struct {
	Status    int
	Code      string
	Message   string
	Details   []shared.FieldError
	RequestID string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("users-api: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("users-api: %d %s: %s", e.Status, e.Code, e.Message)
}

// Is сопоставляет HTTP-статус с общими ошибками.
func (e *APIError) Is(target error) bool {
	switch e.Status {
	case http.StatusBadRequest:
		return target == serr.ErrInvalidInput
	case http.StatusNotFound:
		return target == serr.ErrNotFound
	case http.StatusConflict:
		return target == serr.ErrAlreadyExists
	case http.StatusRequestEntityTooLarge:
		return target == serr.ErrPayloadTooLarge
	case http.StatusServiceUnavailable:
		return target == serr.ErrStorage
	}
	return e.Status >= 500 && target == serr.ErrInternal
}

// readAPIError разбирает тело ошибки. Если это не ErrorResponse, текст тела
// (или res.Status) попадает в Message.
func readAPIError(res *http.Response, raw []byte) *APIError {
	apiErr := &APIError{Status: res.StatusCode}
	var body shared.ErrorResponse
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		apiErr.Code = body.Error
		apiErr.Message = body.Message
		apiErr.Details = body.Details
		apiErr.RequestID = body.RequestID
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(raw))
	if apiErr.Message == "" {
		apiErr.Message = res.Status
	}
	return apiErr
}

// decodeJSONOrOK декодирует JSON из r в resp. Пустое тело не ошибка.
func decodeJSONOrOK(r io.Reader, resp any) error {
	if resp == nil {
		return nil
	}
	err := json.NewDecoder(r).Decode(resp)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// do выполняет запрос и (при необходимости) декодирует JSON-ответ.
func (c *Client) do(ctx context.Context, method, path string, req, resp any) error {
	var body io.Reader
	if req != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(req); err != nil {
			return err
		}
		body = &buf
	}

	r, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	r.Header.Set("Accept", "application/json")
	if req != nil {
		r.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(r)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		raw, _ := io.ReadAll(res.Body)
		apiErr := readAPIError(res, raw)

		// 503 readiness несёт отчёт по зависимостям: отдаём его вместе с ошибкой
		if res.StatusCode == http.StatusServiceUnavailable && resp != nil && apiErr.Code == "" {
			if err := json.Unmarshal(raw, resp); err == nil {
				apiErr.Message = res.Status
			}
		}
		return apiErr
	}

	// 204/пустое тело — ок
	if res.StatusCode == http.StatusNoContent {
		return nil
	}

	return decodeJSONOrOK(res.Body, resp)
}

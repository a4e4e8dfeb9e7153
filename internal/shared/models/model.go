package models

import (
	"bytes"
	"encoding/json"
)

// CreateUserRequest — тело запроса создания пользователя.
//
// Используется в:
//
//	POST /api/v1/users
//
// Поля:
//   - Email обязателен, валидный адрес;
//   - Password обязателен, 8..64 символа (на сервере хранится только хэш);
//   - FirstName/LastName опциональны, до 50 символов.
type CreateUserRequest struct {
	Email     string  `json:"email" example:"user@example.com"`
	Password  string  `json:"password" example:"longenough1"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
}

// UpdateUserRequest — запрос частичного обновления пользователя (sparse patch).
//
// Используется в:
//
//	PATCH /api/v1/users/{id}
//
// Непереданное поле не меняется. FirstName/LastName можно сбросить явным null,
// для Email и Password null недопустим.
type UpdateUserRequest struct {
	Email     Nullable[string] `json:"email" swaggertype:"string"`
	Password  Nullable[string] `json:"password" swaggertype:"string"`
	FirstName Nullable[string] `json:"firstName" swaggertype:"string"`
	LastName  Nullable[string] `json:"lastName" swaggertype:"string"`
}

// Nullable — поле патча, которое отличает три состояния:
//   - Set=false: поле не передано;
//   - Set=true, Valid=false: передан null;
//   - Set=true, Valid=true: передано значение.
type Nullable[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// Some возвращает заполненное значение (удобно в тестах и при сборке патча).
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Valid: true, Value: v}
}

// Null возвращает явно переданный null.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// UnmarshalJSON вызывается только если ключ присутствует в JSON,
// поэтому сам факт вызова означает Set=true.
func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Valid = false
		var zero T
		n.Value = zero
		return nil
	}
	if err := json.Unmarshal(b, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// MarshalJSON пишет null для непереданного/пустого значения.
func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.Set || !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Ptr возвращает указатель на значение или nil для null/непереданного поля.
func (n Nullable[T]) Ptr() *T {
	if !n.Set || !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// FieldError — ошибка валидации конкретного поля.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse стандартный формат ошибки API.
//
// Error — короткий стабильный код (invalid_input, not_found, already_exists, internal ...),
// Message — безопасное человекочитаемое описание, без деталей БД.
type ErrorResponse struct {
	Error     string       `json:"error"`
	Message   string       `json:"message"`
	Details   []FieldError `json:"details,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
}

// StatusResponse — ответ liveness и корневого эндпоинта: {"status":"ok"}.
type StatusResponse struct {
	Status string `json:"status"`
}

// IndicatorStatus — состояние одной зависимости в readiness-отчёте.
type IndicatorStatus struct {
	Status  string `json:"status"` // up|down
	Message string `json:"message,omitempty"`
}

// ReadinessResponse — ответ readiness-пробы.
//
// Формат:
//
//	{"status":"ok","info":{"database":{"status":"up"}},"error":{},"details":{"database":{"status":"up"}}}
type ReadinessResponse struct {
	Status  string                     `json:"status"` // ok|error
	Info    map[string]IndicatorStatus `json:"info"`
	Error   map[string]IndicatorStatus `json:"error"`
	Details map[string]IndicatorStatus `json:"details"`
}

package models

import (
	"fmt"
	"math"
	"net/mail"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	serr "github.com/IvanChernomyrdin/go-users-api/internal/shared/errors"
	shared "github.com/IvanChernomyrdin/go-users-api/internal/shared/models"
)

// Ограничения на поля пользователя.
const (
	PasswordMinLen = 8
	PasswordMaxLen = 64
	NameMaxLen     = 50
	EmailMaxLen    = 255
)

// Пагинация по умолчанию и потолок limit.
const (
	DefaultPage  = 1
	DefaultLimit = 25
	MaxLimit     = 100
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidationError — список ошибок по полям. errors.Is(err, ErrInvalidInput) == true.
type ValidationError struct {
	Fields []shared.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("%s: %s", serr.ErrInvalidInput, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return serr.ErrInvalidInput
}

// NewValidationError возвращает nil для пустого списка.
func NewValidationError(fields []shared.FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// NormalizeEmail обрезает пробелы и приводит адрес к нижнему регистру.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateCreateUser проверяет тело создания пользователя.
// Email ожидается уже нормализованным.
func ValidateCreateUser(req shared.CreateUserRequest) []shared.FieldError {
	var fields []shared.FieldError

	if msg := checkEmail(req.Email); msg != "" {
		fields = append(fields, shared.FieldError{Field: "email", Message: msg})
	}
	if msg := checkPassword(req.Password); msg != "" {
		fields = append(fields, shared.FieldError{Field: "password", Message: msg})
	}
	if req.FirstName != nil {
		if msg := checkName(*req.FirstName); msg != "" {
			fields = append(fields, shared.FieldError{Field: "firstName", Message: msg})
		}
	}
	if req.LastName != nil {
		if msg := checkName(*req.LastName); msg != "" {
			fields = append(fields, shared.FieldError{Field: "lastName", Message: msg})
		}
	}
	return fields
}

// ValidateUpdateUser проверяет только переданные поля патча.
func ValidateUpdateUser(req shared.UpdateUserRequest) []shared.FieldError {
	var fields []shared.FieldError

	if req.Email.Set {
		if !req.Email.Valid {
			fields = append(fields, shared.FieldError{Field: "email", Message: "email must not be null"})
		} else if msg := checkEmail(req.Email.Value); msg != "" {
			fields = append(fields, shared.FieldError{Field: "email", Message: msg})
		}
	}
	if req.Password.Set {
		if !req.Password.Valid {
			fields = append(fields, shared.FieldError{Field: "password", Message: "password must not be null"})
		} else if msg := checkPassword(req.Password.Value); msg != "" {
			fields = append(fields, shared.FieldError{Field: "password", Message: msg})
		}
	}
	if req.FirstName.Set && req.FirstName.Valid {
		if msg := checkName(req.FirstName.Value); msg != "" {
			fields = append(fields, shared.FieldError{Field: "firstName", Message: msg})
		}
	}
	if req.LastName.Set && req.LastName.Valid {
		if msg := checkName(req.LastName.Value); msg != "" {
			fields = append(fields, shared.FieldError{Field: "lastName", Message: msg})
		}
	}
	return fields
}

func checkEmail(email string) string {
	if email == "" {
		return "email is required"
	}
	if len(email) > EmailMaxLen {
		return fmt.Sprintf("email must be at most %d characters", EmailMaxLen)
	}
	if !emailRe.MatchString(email) {
		return "email must be an email"
	}
	// отсекаем "Name <a@b.c>" и прочие формы, которые regexp пропускает
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "email must be an email"
	}
	return ""
}

func checkPassword(password string) string {
	n := utf8.RuneCountInString(password)
	if n < PasswordMinLen {
		return fmt.Sprintf("password must be at least %d characters", PasswordMinLen)
	}
	if n > PasswordMaxLen {
		return fmt.Sprintf("password must be at most %d characters", PasswordMaxLen)
	}
	return ""
}

func checkName(name string) string {
	if utf8.RuneCountInString(name) > NameMaxLen {
		return fmt.Sprintf("must be at most %d characters", NameMaxLen)
	}
	return ""
}

// PageQuery — параметры пагинации. nil означает «не передано».
type PageQuery struct {
	Page  *int
	Limit *int
}

// ParsePageQuery разбирает ?page=&limit= из query-строки.
// Нечисловые значения сразу дают ValidationError; диапазоны проверяет Resolve.
func ParsePageQuery(values url.Values) (PageQuery, error) {
	var (
		q      PageQuery
		fields []shared.FieldError
	)

	parse := func(name string) *int {
		raw := strings.TrimSpace(values.Get(name))
		if raw == "" {
			return nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields = append(fields, shared.FieldError{Field: name, Message: name + " must be an integer number"})
			return nil
		}
		return &n
	}

	q.Page = parse("page")
	q.Limit = parse("limit")

	return q, NewValidationError(fields)
}

// Resolve применяет дефолты (page=1, limit=25), проверяет диапазоны
// и считает offset = (page-1)*limit. При переполнении offset = math.MaxInt.
func (q PageQuery) Resolve() (offset, limit int, err error) {
	page := DefaultPage
	limit = DefaultLimit

	var fields []shared.FieldError
	if q.Page != nil {
		page = *q.Page
		if page < 1 {
			fields = append(fields, shared.FieldError{Field: "page", Message: "page must be a positive number"})
		}
	}
	if q.Limit != nil {
		limit = *q.Limit
		switch {
		case limit < 1:
			fields = append(fields, shared.FieldError{Field: "limit", Message: "limit must be a positive number"})
		case limit > MaxLimit:
			fields = append(fields, shared.FieldError{Field: "limit", Message: fmt.Sprintf("limit must not be greater than %d", MaxLimit)})
		}
	}
	if err := NewValidationError(fields); err != nil {
		return 0, 0, err
	}

	// страница за пределами int даёт пустой результат, а не отрицательный OFFSET
	if page-1 > math.MaxInt/limit {
		return math.MaxInt, limit, nil
	}
	return (page - 1) * limit, limit, nil
}

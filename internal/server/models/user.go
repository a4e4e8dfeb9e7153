// Серверная модель пользователя
package models

import (
	"time"

	shared "github.com/IvanChernomyrdin/go-users-api/internal/shared/models"
)

// User — строка таблицы users как её видит сервер.
// PasswordHash наружу никогда не отдаётся, см. Public.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FirstName    *string
	LastName     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser — внешнее представление пользователя.
// Поля перечислены явно (whitelist), хэша пароля здесь нет.
type PublicUser struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName *string   `json:"firstName"`
	LastName  *string   `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Public проецирует User во внешнее представление.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// PublicUsers проецирует срез пользователей. Пустой вход даёт пустой (не nil) срез,
// чтобы в JSON уходил [] а не null.
func PublicUsers(users []User) []PublicUser {
	out := make([]PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out
}

// NewUser — данные для вставки нового пользователя (хэш уже посчитан).
type NewUser struct {
	Email        string
	PasswordHash string
	FirstName    *string
	LastName     *string
}

// UserPatch — разреженный патч: меняются только переданные поля.
type UserPatch struct {
	Email        *string
	PasswordHash *string
	FirstName    shared.Nullable[string]
	LastName     shared.Nullable[string]
}

// Empty сообщает, что в патче нет ни одного поля.
func (p UserPatch) Empty() bool {
	return p.Email == nil && p.PasswordHash == nil && !p.FirstName.Set && !p.LastName.Set
}

// Package service содержит бизнес-логику приложения.
// Это прослойка между HTTP-обработчиками (api) и хранилищем данных (repository).
package service

import (
	"context"

	"github.com/IvanChernomyrdin/go-users-api/internal/server/config"
	"github.com/IvanChernomyrdin/go-users-api/internal/server/models"
	"github.com/IvanChernomyrdin/go-users-api/internal/shared/logger"
)

//go:generate mockgen -source=service.go -destination=mocks/mock_service.go -package=mocks

// Repositories — набор интерфейсов, которые сервисный слой ожидает от слоя repository.
type Repositories struct {
	Users  UsersRepo
	Health HealthRepo
}

// Services — агрегатор всех сервисов приложения.
type Services struct {
	Users  *UsersService
	Health *HealthService
}

// NewServices собирает все сервисы приложения.
func NewServices(repos Repositories, hasher PasswordHasher, cfg *config.Config, log *logger.HTTPLogger) *Services {
	return &Services{
		Users:  NewUsersService(repos.Users, hasher, log),
		Health: NewHealthService(repos.Health, cfg.Health.ProbeTimeout, log),
	}
}

// HealthRepo — минимально нужное для readiness.
type HealthRepo interface {
	Probe(ctx context.Context) error
}

// UsersRepo — репозиторий пользователей.
//
// Ошибки только нормализованные: ErrConflict, ErrNotFound, ErrStorage.
// FindByID для отсутствующей строки возвращает (nil, nil).
type UsersRepo interface {
	Create(ctx context.Context, u models.NewUser) (models.User, error)
	List(ctx context.Context, offset, limit int) ([]models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	Update(ctx context.Context, id int64, patch models.UserPatch) (models.User, error)
	Delete(ctx context.Context, id int64) error
}

// PasswordHasher — односторонний хэш пароля (crypto.Hasher).
type PasswordHasher interface {
	Hash(password string) (string, error)
}

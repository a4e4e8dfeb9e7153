package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/IvanChernomyrdin/go-users-api/internal/server/models"
	serr "github.com/IvanChernomyrdin/go-users-api/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-users-api/internal/shared/logger"
	shared "github.com/IvanChernomyrdin/go-users-api/internal/shared/models"
)

// ErrEmptyPatch — в PATCH не передано ни одного поля.
var ErrEmptyPatch = fmt.Errorf("%w: no fields provided to update", serr.ErrInvalidInput)

// UsersService реализует CRUD над пользователями.
//
// Ответственность:
//   - валидация и нормализация входа (email в нижнем регистре)
//   - хэширование пароля до записи
//   - перевод ошибок хранилища в исходы запроса (ErrConflict -> ErrAlreadyExists)
//
// Наружу отдаётся только PublicUser, хэш пароля не покидает сервис.
type UsersService struct {
	users  UsersRepo
	hasher PasswordHasher
	log    *logger.HTTPLogger
}

// NewUsersService создаёт UsersService.
func NewUsersService(users UsersRepo, hasher PasswordHasher, log *logger.HTTPLogger) *UsersService {
	if log == nil {
		log = logger.Nop()
	}
	return &UsersService{users: users, hasher: hasher, log: log}
}

// Create регистрирует нового пользователя.
//
// Ошибки:
//   - ValidationError (ErrInvalidInput) — невалидные поля
//   - ErrAlreadyExists — email занят
//   - ErrStorage / ErrInternal — сбой хранилища или хэширования
func (s *UsersService) Create(ctx context.Context, req shared.CreateUserRequest) (models.PublicUser, error) {
	const op = "service.Users.Create"

	req.Email = models.NormalizeEmail(req.Email)
	if err := models.NewValidationError(models.ValidateCreateUser(req)); err != nil {
		return models.PublicUser{}, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.log.Error("hash password", zap.String("op", op), zap.Error(err))
		return models.PublicUser{}, fmt.Errorf("%s: %w", op, serr.ErrInternal)
	}

	u, err := s.users.Create(ctx, models.NewUser{
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	})
	if err != nil {
		return models.PublicUser{}, s.storeErr(op, err)
	}

	s.log.Info("user created", zap.Int64("user_id", u.ID))
	return u.Public(), nil
}

// List отдаёт страницу пользователей, новые первыми.
// page/limit по умолчанию 1/25, limit не больше 100.
func (s *UsersService) List(ctx context.Context, q models.PageQuery) ([]models.PublicUser, error) {
	const op = "service.Users.List"

	offset, limit, err := q.Resolve()
	if err != nil {
		return nil, err
	}

	users, err := s.users.List(ctx, offset, limit)
	if err != nil {
		return nil, s.storeErr(op, err)
	}
	return models.PublicUsers(users), nil
}

// Get возвращает пользователя по id. Отсутствие — ErrNotFound.
func (s *UsersService) Get(ctx context.Context, id int64) (models.PublicUser, error) {
	const op = "service.Users.Get"

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return models.PublicUser{}, s.storeErr(op, err)
	}
	if u == nil {
		return models.PublicUser{}, fmt.Errorf("%s: %w", op, serr.ErrNotFound)
	}
	return u.Public(), nil
}

// Update применяет разреженный патч.
//
// Пустой патч отклоняется до обращения к хранилищу (ErrEmptyPatch).
// Новый пароль хэшируется, email нормализуется.
func (s *UsersService) Update(ctx context.Context, id int64, req shared.UpdateUserRequest) (models.PublicUser, error) {
	const op = "service.Users.Update"

	if req.Email.Set && req.Email.Valid {
		req.Email.Value = models.NormalizeEmail(req.Email.Value)
	}
	if err := models.NewValidationError(models.ValidateUpdateUser(req)); err != nil {
		return models.PublicUser{}, err
	}

	patch := models.UserPatch{
		Email:     req.Email.Ptr(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if patch.Empty() && !req.Password.Set {
		return models.PublicUser{}, ErrEmptyPatch
	}
	if req.Password.Set {
		hash, err := s.hasher.Hash(req.Password.Value)
		if err != nil {
			s.log.Error("hash password", zap.String("op", op), zap.Error(err))
			return models.PublicUser{}, fmt.Errorf("%s: %w", op, serr.ErrInternal)
		}
		patch.PasswordHash = &hash
	}

	u, err := s.users.Update(ctx, id, patch)
	if err != nil {
		return models.PublicUser{}, s.storeErr(op, err)
	}

	s.log.Info("user updated", zap.Int64("user_id", u.ID))
	return u.Public(), nil
}

// Delete удаляет пользователя. Отсутствие — ErrNotFound.
func (s *UsersService) Delete(ctx context.Context, id int64) error {
	const op = "service.Users.Delete"

	if err := s.users.Delete(ctx, id); err != nil {
		return s.storeErr(op, err)
	}

	s.log.Info("user deleted", zap.Int64("user_id", id))
	return nil
}

// storeErr переводит нормализованную ошибку хранилища в исход запроса.
func (s *UsersService) storeErr(op string, err error) error {
	switch {
	case errors.Is(err, serr.ErrConflict):
		return fmt.Errorf("%s: %w", op, serr.ErrAlreadyExists)
	case errors.Is(err, serr.ErrNotFound):
		return fmt.Errorf("%s: %w", op, serr.ErrNotFound)
	default:
		s.log.Error("storage failure", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/IvanChernomyrdin/go-users-api/internal/server/models"
	serr "github.com/IvanChernomyrdin/go-users-api/internal/shared/errors"
)

const userColumns = `id, email, password_hash, first_name, last_name, created_at, updated_at`

type UsersRepository struct {
	db *sql.DB
}

func NewUsersRepository(db *sql.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

// Create вставляет пользователя и возвращает строку целиком (id, таймстемпы).
// Занятый email — ErrConflict.
func (r *UsersRepository) Create(ctx context.Context, u models.NewUser) (models.User, error) {
	const op = "repository.Users.Create"

	row := r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, first_name, last_name)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		u.Email, u.PasswordHash, nullString(u.FirstName), nullString(u.LastName),
	)

	user, err := scanUser(row)
	if err != nil {
		return models.User{}, normalize(op, err)
	}
	return user, nil
}

// List отдаёт страницу пользователей, новые первыми.
// Пустая страница — пустой срез, не ошибка.
func (r *UsersRepository) List(ctx context.Context, offset, limit int) ([]models.User, error) {
	const op = "repository.Users.List"

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+`
		 FROM users
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, normalize(op, err)
	}
	defer rows.Close()

	users := make([]models.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, normalize(op, err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, normalize(op, err)
	}
	return users, nil
}

// FindByID возвращает (nil, nil), если строки нет: отсутствие здесь не ошибка,
// решение принимает вызывающий.
func (r *UsersRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	const op = "repository.Users.FindByID"

	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, normalize(op, err)
	}
	return &u, nil
}

// Update меняет только поля из патча и возвращает обновлённую строку.
// Нет строки — ErrNotFound, занятый email — ErrConflict.
func (r *UsersRepository) Update(ctx context.Context, id int64, patch models.UserPatch) (models.User, error) {
	const op = "repository.Users.Update"

	if patch.Empty() {
		return models.User{}, fmt.Errorf("%s: %w: empty patch", op, serr.ErrStorage)
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Email != nil {
		set("email", *patch.Email)
	}
	if patch.PasswordHash != nil {
		set("password_hash", *patch.PasswordHash)
	}
	if patch.FirstName.Set {
		set("first_name", nullString(patch.FirstName.Ptr()))
	}
	if patch.LastName.Set {
		set("last_name", nullString(patch.LastName.Ptr()))
	}
	sets = append(sets, "updated_at = clock_timestamp()")
	args = append(args, id)

	query := fmt.Sprintf(
		`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), userColumns,
	)

	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return models.User{}, normalize(op, err)
	}
	return u, nil
}

// Delete удаляет строку. Нет строки — ErrNotFound.
func (r *UsersRepository) Delete(ctx context.Context, id int64) error {
	const op = "repository.Users.Delete"

	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return normalize(op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return normalize(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, serr.ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (models.User, error) {
	var (
		u         models.User
		firstName sql.NullString
		lastName  sql.NullString
	)
	if err := s.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &firstName, &lastName, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return models.User{}, err
	}
	u.FirstName = stringPtr(firstName)
	u.LastName = stringPtr(lastName)
	return u, nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

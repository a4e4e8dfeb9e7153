// Package provision создаёт базу данных приложения до старта сервиса.
//
// Вызывается ровно один раз при запуске, до подключения пула и миграций.
// Повторный вызов с тем же именем базы ничего не меняет.
package provision

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
	"go.uber.org/zap"

	serr "github.com/IvanChernomyrdin/go-users-api/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-users-api/internal/shared/logger"
	"github.com/IvanChernomyrdin/go-users-api/internal/shared/utils"

	_ "github.com/jackc/pgx/v4/stdlib"
)

const (
	helpWithAdmin    = "Verify that the administrator credentials have permission to create databases."
	helpWithoutAdmin = "Consider supplying DATABASE_ADMIN_URL with credentials that can create databases."
)

// Opener открывает служебное соединение. В тестах подменяется на sqlmock.
type Opener func(dsn string) (*sql.DB, error)

// Options — необязательные параметры EnsureDatabase.
type Options struct {
	Timeout       time.Duration // на весь вызов, по умолчанию 10s
	MaintenanceDB string        // служебная база для подключения, по умолчанию postgres
	Opener        Opener
	Logger        *logger.HTTPLogger
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.MaintenanceDB == "" {
		o.MaintenanceDB = "postgres"
	}
	if o.Opener == nil {
		o.Opener = func(dsn string) (*sql.DB, error) { return sql.Open("pgx", dsn) }
	}
	if o.Logger == nil {
		o.Logger = logger.Nop()
	}
	return o
}

// EnsureDatabase гарантирует, что база из пути databaseURL существует.
//
// Пустое имя базы — успешный no-op. Подключаемся под adminURL, если он задан,
// иначе под учёткой приложения к служебной базе. Соединение закрывается
// на любом исходе. Любая ошибка оборачивается в ErrProvisioning с подсказкой,
// что проверить оператору.
func EnsureDatabase(ctx context.Context, databaseURL, adminURL string, opts Options) error {
	opts = opts.withDefaults()
	log := opts.Logger

	target, err := url.Parse(databaseURL)
	if err != nil {
		return fmt.Errorf("%w: DATABASE_URL не является URL", serr.ErrProvisioning)
	}
	name := strings.TrimPrefix(target.Path, "/")
	if name == "" {
		log.Debug("database name is empty, skipping provisioning")
		return nil
	}

	help, creds := helpWithoutAdmin, "application"
	if adminURL != "" {
		help, creds = helpWithAdmin, "admin"
	}
	fail := func(cause error) error {
		log.Error("failed ensuring database", zap.String("database", name), zap.Error(cause))
		return fmt.Errorf(
			"%w: failed to ensure database %q exists. Make sure PostgreSQL is reachable and credentials are correct.\n%s\n%v",
			serr.ErrProvisioning, name, help, cause,
		)
	}

	dsn, err := connectionURL(databaseURL, adminURL, opts.MaintenanceDB)
	if err != nil {
		return fail(err)
	}

	log.Info("ensuring database exists",
		zap.String("database", name),
		zap.String("credentials", creds),
		zap.String("dsn", utils.RedactURL(dsn)),
	)

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	db, err := opts.Opener(dsn)
	if err != nil {
		return fail(err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Warn("close bootstrap connection", zap.Error(cerr))
			return
		}
		log.Debug("closed bootstrap connection", zap.String("database", name))
	}()

	created, err := createIfAbsent(ctx, db, name)
	if err != nil {
		return fail(err)
	}

	log.Info("database is ready", zap.String("database", name), zap.Bool("created", created))
	return nil
}

// createIfAbsent — аналог CREATE DATABASE IF NOT EXISTS, которого в PostgreSQL нет.
// Гонку двух одновременных стартов закрывает 42P04 (duplicate_database).
func createIfAbsent(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var exists bool
	if err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`, name,
	).Scan(&exists); err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	// идентификаторы не параметризуются, экранируем сами
	stmt := "CREATE DATABASE " + pgx.Identifier{name}.Sanitize() +
		" WITH ENCODING 'UTF8' LC_COLLATE 'C' LC_CTYPE 'C' TEMPLATE template0"
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.DuplicateDatabase {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// connectionURL выбирает, куда подключаться для CREATE DATABASE.
// Целевой базы может ещё не быть, поэтому идём в служебную.
func connectionURL(databaseURL, adminURL, maintenanceDB string) (string, error) {
	if adminURL != "" {
		u, err := url.Parse(adminURL)
		if err != nil {
			return "", errors.New("DATABASE_ADMIN_URL не является URL")
		}
		if strings.TrimPrefix(u.Path, "/") == "" {
			u.Path = "/" + maintenanceDB
			u.RawPath = ""
		}
		return u.String(), nil
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", errors.New("DATABASE_URL не является URL")
	}
	u.Path = "/" + maintenanceDB
	u.RawPath = ""
	return u.String(), nil
}

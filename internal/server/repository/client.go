// Package repository — слой доступа к PostgreSQL.
//
// Client владеет пулом соединений (connect при старте, disconnect при
// остановке), UsersRepository реализует CRUD над таблицей users.
// Коды ошибок драйвера дальше этого пакета не уходят, см. normalize.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/IvanChernomyrdin/go-users-api/internal/server/config"
	serr "github.com/IvanChernomyrdin/go-users-api/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-users-api/internal/shared/logger"
	"github.com/IvanChernomyrdin/go-users-api/internal/shared/utils"
	"github.com/IvanChernomyrdin/go-users-api/migrations"

	_ "github.com/jackc/pgx/v4/stdlib"
)

// Client — подключение к хранилищу с жизненным циклом процесса.
type Client struct {
	cfg config.DBConfig
	log *logger.HTTPLogger

	mu sync.RWMutex
	db *sql.DB
}

// NewClient создаёт клиент без подключения, пул открывает Connect.
func NewClient(cfg config.DBConfig, log *logger.HTTPLogger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	return &Client{cfg: cfg, log: log}
}

// NewClientFromDB оборачивает уже открытый пул (тесты, sqlmock).
func NewClientFromDB(db *sql.DB, log *logger.HTTPLogger) *Client {
	c := NewClient(config.DBConfig{}, log)
	c.db = db
	return c
}

// Connect открывает пул и проверяет его пингом. Повторный вызов — no-op.
// При ошибке клиент остаётся неподключённым.
func (c *Client) Connect(ctx context.Context) error {
	const op = "repository.Client.Connect"

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return nil
	}

	db, err := sql.Open("pgx", c.cfg.URL)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, serr.ErrStorage, err)
	}
	db.SetMaxOpenConns(c.cfg.MaxOpenConns)
	db.SetMaxIdleConns(c.cfg.MaxIdleConns)
	db.SetConnMaxLifetime(c.cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(c.cfg.ConnMaxIdleTime)

	pingCtx := ctx
	if c.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, c.cfg.ConnectTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return fmt.Errorf("%s: %w: %v", op, serr.ErrStorage, err)
	}

	c.db = db
	c.log.Info("connected to database", zap.String("dsn", utils.RedactURL(c.cfg.URL)))
	return nil
}

// Disconnect закрывает пул. Безопасен до Connect, после неудачного Connect
// и при повторном вызове.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	if err != nil {
		return fmt.Errorf("repository.Client.Disconnect: %w: %v", serr.ErrStorage, err)
	}
	c.log.Info("disconnected from database")
	return nil
}

// DB отдаёт пул для репозиториев. nil, если клиент не подключён.
func (c *Client) DB() *sql.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// Probe — пустой запрос туда-обратно. Любой сбой, включая таймаут и
// отсутствие подключения, возвращается как ErrStorage; распознанная причина
// (ErrStoreUnreachable, ErrStoreAuth, ...) доступна через errors.Is.
func (c *Client) Probe(ctx context.Context) error {
	const op = "repository.Client.Probe"

	db := c.DB()
	if db == nil {
		return fmt.Errorf("%s: %w: %w", op, serr.ErrStorage, serr.ErrStoreNotConnected)
	}

	var one int
	if err := db.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		// причина прикрепляется классом, текст драйвера остаётся только строкой
		if cause := probeCause(err); cause != nil {
			return fmt.Errorf("%s: %w: %w: %v", op, serr.ErrStorage, cause, err)
		}
		return fmt.Errorf("%s: %w: %v", op, serr.ErrStorage, err)
	}
	return nil
}

// Migrate накатывает вшитые миграции. Отсутствие изменений — успех.
func (c *Client) Migrate(ctx context.Context) error {
	const op = "repository.Client.Migrate"

	db := c.DB()
	if db == nil {
		return fmt.Errorf("%s: %w: not connected", op, serr.ErrStorage)
	}

	src, err := iofs.New(migrations.FS, migrations.Dir)
	if err != nil {
		return fmt.Errorf("%s: source: %w", op, err)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = src.Close()
		return fmt.Errorf("%s: %w: %v", op, serr.ErrStorage, err)
	}

	driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{})
	if err != nil {
		_ = src.Close()
		_ = conn.Close()
		return fmt.Errorf("%s: driver: %w", op, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		_ = src.Close()
		_ = driver.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	// закрывает источник и выделенное соединение, пул остаётся открытым
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			c.log.Warn("close migrator", zap.NamedError("source", srcErr), zap.NamedError("database", dbErr))
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			c.log.Info("migrations: no change")
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	version, dirty, _ := m.Version()
	c.log.Info("migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

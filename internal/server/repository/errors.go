package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"

	serr "github.com/IvanChernomyrdin/go-users-api/internal/shared/errors"
)

// normalize — единственное место, где разбираются коды PostgreSQL.
//
//	23505 unique_violation      -> ErrConflict
//	P0002 no_data_found, ErrNoRows -> ErrNotFound
//	всё остальное               -> ErrStorage
//
// Исходная ошибка для ErrStorage сохраняется только текстом (%v), чтобы
// слои выше не могли достать *pgconn.PgError через errors.As.
func normalize(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, serr.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%s: %w", op, serr.ErrConflict)
		case pgerrcode.NoDataFound:
			return fmt.Errorf("%s: %w", op, serr.ErrNotFound)
		}
	}

	return fmt.Errorf("%s: %w: %v", op, serr.ErrStorage, err)
}

// probeCause сводит сбой Probe к грубому классу причины для readiness.
// nil, если класс не распознан.
func probeCause(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.InvalidPassword, pgerrcode.InvalidAuthorizationSpecification:
			return serr.ErrStoreAuth
		case pgerrcode.InvalidCatalogName:
			return serr.ErrStoreMissingDatabase
		case pgerrcode.CannotConnectNow, pgerrcode.TooManyConnections, pgerrcode.AdminShutdown:
			return serr.ErrStoreUnavailable
		}
		return nil
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return serr.ErrStoreUnreachable
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return serr.ErrStoreUnreachable
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return serr.ErrStoreUnreachable
	}
	return nil
}

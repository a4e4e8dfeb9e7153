package tests

import (
	"context"
	"errors"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-users-api/internal/server/config"
	"github.com/IvanChernomyrdin/go-users-api/internal/server/repository"
	serr "github.com/IvanChernomyrdin/go-users-api/internal/shared/errors"
)

func TestClient_Probe_OK(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	c := repository.NewClientFromDB(db, nil)
	mock.ExpectQuery(`SELECT 1`).WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	require.NoError(t, c.Probe(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClient_Probe_FailureIsStorage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	c := repository.NewClientFromDB(db, nil)
	mock.ExpectQuery(`SELECT 1`).WillReturnError(errors.New("connection refused"))

	err = c.Probe(context.Background())
	require.ErrorIs(t, err, serr.ErrStorage)
}

func TestClient_Probe_NotConnected(t *testing.T) {
	c := repository.NewClient(config.DBConfig{URL: "postgres://u:p@localhost/db"}, nil)
	require.ErrorIs(t, c.Probe(context.Background()), serr.ErrStorage)
	require.ErrorIs(t, c.Probe(context.Background()), serr.ErrStoreNotConnected)
	require.ErrorIs(t, c.Migrate(context.Background()), serr.ErrStorage)
}

// сбой Probe получает грубый класс причины, ошибка драйвера наружу не достаётся
func TestClient_Probe_CauseClass(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		cause error
	}{
		{name: "bad password", err: &pgconn.PgError{Code: "28P01", Message: "password authentication failed for user \"app\""}, cause: serr.ErrStoreAuth},
		{name: "no such role", err: &pgconn.PgError{Code: "28000"}, cause: serr.ErrStoreAuth},
		{name: "missing database", err: &pgconn.PgError{Code: "3D000"}, cause: serr.ErrStoreMissingDatabase},
		{name: "starting up", err: &pgconn.PgError{Code: "57P03"}, cause: serr.ErrStoreUnavailable},
		{name: "too many connections", err: &pgconn.PgError{Code: "53300"}, cause: serr.ErrStoreUnavailable},
		{name: "refused", err: &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, cause: serr.ErrStoreUnreachable},
		{name: "dns", err: &net.DNSError{Err: "no such host", Name: "db"}, cause: serr.ErrStoreUnreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			t.Cleanup(func() { db.Close() })

			mock.ExpectQuery(`SELECT 1`).WillReturnError(tt.err)

			err = repository.NewClientFromDB(db, nil).Probe(context.Background())
			require.ErrorIs(t, err, serr.ErrStorage)
			require.ErrorIs(t, err, tt.cause)

			var pgErr *pgconn.PgError
			require.False(t, errors.As(err, &pgErr))
		})
	}
}

func TestClient_Probe_UnknownCause(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectQuery(`SELECT 1`).WillReturnError(&pgconn.PgError{Code: "42601"})

	err = repository.NewClientFromDB(db, nil).Probe(context.Background())
	require.ErrorIs(t, err, serr.ErrStorage)
	for _, cause := range []error{serr.ErrStoreAuth, serr.ErrStoreUnreachable, serr.ErrStoreUnavailable, serr.ErrStoreMissingDatabase} {
		require.NotErrorIs(t, err, cause)
	}
}

func TestClient_Disconnect_Idempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	c := repository.NewClientFromDB(db, nil)
	mock.ExpectClose()

	require.NoError(t, c.Disconnect())
	require.NoError(t, c.Disconnect())
	require.Nil(t, c.DB())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClient_Disconnect_BeforeConnect(t *testing.T) {
	c := repository.NewClient(config.DBConfig{}, nil)
	require.NoError(t, c.Disconnect())
}

func TestClient_Connect_FailureLeavesDisconnected(t *testing.T) {
	c := repository.NewClient(config.DBConfig{
		// порт 1 на localhost никто не слушает
		URL:            "postgres://u:p@127.0.0.1:1/db?sslmode=disable&connect_timeout=1",
		ConnectTimeout: 2 * time.Second,
	}, nil)

	err := c.Connect(context.Background())
	require.ErrorIs(t, err, serr.ErrStorage)
	require.Nil(t, c.DB())
	require.NoError(t, c.Disconnect())
}

func TestClient_Connect_AlreadyConnectedIsNoop(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	c := repository.NewClientFromDB(db, nil)
	require.NoError(t, c.Connect(context.Background()))
	require.Same(t, db, c.DB())
}

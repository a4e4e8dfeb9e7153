package tests

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/IvanChernomyrdin/go-users-api/internal/server/config"
	"github.com/IvanChernomyrdin/go-users-api/internal/server/models"
	"github.com/IvanChernomyrdin/go-users-api/internal/server/provision"
	"github.com/IvanChernomyrdin/go-users-api/internal/server/repository"
	serr "github.com/IvanChernomyrdin/go-users-api/internal/shared/errors"
	shared "github.com/IvanChernomyrdin/go-users-api/internal/shared/models"
	"github.com/IvanChernomyrdin/go-users-api/internal/shared/utils"
)

// Интеграционные тесты против настоящего PostgreSQL (postgres:16-alpine):
// provision -> connect -> migrate -> CRUD.
//
// Запуск локально:
//   GO_TEST_INTEGRATION=1 go test ./internal/server/repository/... -v -count=1

// startPostgres поднимает контейнер и возвращает URL суперпользователя без базы в пути.
func startPostgres(t *testing.T) string {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "root", "POSTGRES_PASSWORD": "pass", "POSTGRES_DB": "postgres"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://root:pass@%s:%s", host, port.Port())
}

func TestIntegration_ProvisionMigrateCRUD(t *testing.T) {
	base := startPostgres(t)
	ctx := context.Background()
	dbURL := base + "/users_it?sslmode=disable"

	// база создаётся и второй вызов ничего не ломает
	require.NoError(t, provision.EnsureDatabase(ctx, dbURL, "", provision.Options{}))
	require.NoError(t, provision.EnsureDatabase(ctx, dbURL, base+"/postgres?sslmode=disable", provision.Options{}))

	client := repository.NewClient(config.DBConfig{URL: dbURL, MaxOpenConns: 5, ConnectTimeout: 5 * time.Second}, nil)
	require.NoError(t, client.Connect(ctx))
	t.Cleanup(func() { _ = client.Disconnect() })

	require.NoError(t, client.Migrate(ctx))
	require.NoError(t, client.Migrate(ctx)) // no change
	require.NoError(t, client.Probe(ctx))

	repo := repository.NewUsersRepository(client.DB())

	first, err := repo.Create(ctx, models.NewUser{Email: "a@example.com", PasswordHash: "h1", FirstName: utils.StrPtr("Ann")})
	require.NoError(t, err)
	require.NotZero(t, first.ID)
	require.False(t, first.CreatedAt.IsZero())

	_, err = repo.Create(ctx, models.NewUser{Email: "a@example.com", PasswordHash: "h2"})
	require.ErrorIs(t, err, serr.ErrConflict)

	second, err := repo.Create(ctx, models.NewUser{Email: "b@example.com", PasswordHash: "h3"})
	require.NoError(t, err)

	page, err := repo.List(ctx, 0, 25)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, second.ID, page[0].ID) // новые первыми

	page, err = repo.List(ctx, 1000, 25)
	require.NoError(t, err)
	require.Empty(t, page)

	updated, err := repo.Update(ctx, first.ID, models.UserPatch{FirstName: shared.Null[string](), LastName: shared.Some("Lee")})
	require.NoError(t, err)
	require.Nil(t, updated.FirstName)
	require.Equal(t, "Lee", *updated.LastName)
	require.Equal(t, first.Email, updated.Email)
	require.True(t, updated.UpdatedAt.After(first.UpdatedAt))

	_, err = repo.Update(ctx, second.ID, models.UserPatch{Email: utils.StrPtr("a@example.com")})
	require.ErrorIs(t, err, serr.ErrConflict)

	require.NoError(t, repo.Delete(ctx, first.ID))
	require.ErrorIs(t, repo.Delete(ctx, first.ID), serr.ErrNotFound)

	got, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	require.Nil(t, got)

	_, err = repo.Update(ctx, first.ID, models.UserPatch{LastName: shared.Some("X")})
	require.ErrorIs(t, err, serr.ErrNotFound)
}

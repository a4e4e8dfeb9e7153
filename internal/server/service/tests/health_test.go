package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/IvanChernomyrdin/go-users-api/internal/server/service"
	"github.com/IvanChernomyrdin/go-users-api/internal/server/service/mocks"
	serr "github.com/IvanChernomyrdin/go-users-api/internal/shared/errors"
)

func TestHealthService_Liveness(t *testing.T) {
	ctrl := gomock.NewController(t)
	// без EXPECT: liveness не должен трогать хранилище
	svc := service.NewHealthService(mocks.NewMockHealthRepo(ctrl), time.Second, nil)

	require.Equal(t, "ok", svc.Liveness().Status)
}

func TestHealthService_Readiness_Up(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockHealthRepo(ctrl)
	svc := service.NewHealthService(repo, time.Second, nil)

	repo.EXPECT().Probe(gomock.Any()).Return(nil)

	resp, ok := svc.Readiness(context.Background())
	require.True(t, ok)
	require.Equal(t, "ok", resp.Status)
	require.Equal(t, "up", resp.Info["database"].Status)
	require.Empty(t, resp.Error)
}

func TestHealthService_Readiness_Down(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockHealthRepo(ctrl)
	svc := service.NewHealthService(repo, time.Second, nil)

	repo.EXPECT().Probe(gomock.Any()).
		Return(fmt.Errorf("repository.Client.Probe: %w: dial tcp 10.0.0.1:5432: connection refused", serr.ErrStorage))

	resp, ok := svc.Readiness(context.Background())
	require.False(t, ok)
	require.Equal(t, "error", resp.Status)
	require.Equal(t, "down", resp.Error["database"].Status)
	require.Equal(t, "storage failure", resp.Error["database"].Message)
	// адрес базы наружу не уходит
	require.NotContains(t, resp.Error["database"].Message, "10.0.0.1")
}

// класс причины попадает в сообщение, текст драйвера нет
func TestHealthService_Readiness_CauseClass(t *testing.T) {
	tests := []struct {
		cause error
		want  string
	}{
		{cause: serr.ErrStoreUnreachable, want: "storage failure: connection refused"},
		{cause: serr.ErrStoreAuth, want: "storage failure: authentication failed"},
		{cause: serr.ErrStoreMissingDatabase, want: "storage failure: database does not exist"},
		{cause: serr.ErrStoreUnavailable, want: "storage failure: server unavailable"},
		{cause: serr.ErrStoreNotConnected, want: "storage failure: not connected"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockHealthRepo(ctrl)
			svc := service.NewHealthService(repo, time.Second, nil)

			repo.EXPECT().Probe(gomock.Any()).
				Return(fmt.Errorf("repository.Client.Probe: %w: %w: FATAL: password authentication failed for user \"app\"", serr.ErrStorage, tt.cause))

			resp, ok := svc.Readiness(context.Background())
			require.False(t, ok)
			require.Equal(t, tt.want, resp.Error["database"].Message)
			require.Equal(t, tt.want, resp.Details["database"].Message)
			require.NotContains(t, resp.Error["database"].Message, "app")
		})
	}
}

func TestHealthService_Readiness_Timeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockHealthRepo(ctrl)
	svc := service.NewHealthService(repo, 20*time.Millisecond, nil)

	repo.EXPECT().Probe(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
		<-ctx.Done()
		return fmt.Errorf("repository.Client.Probe: %w: %v", serr.ErrStorage, ctx.Err())
	})

	start := time.Now()
	resp, ok := svc.Readiness(context.Background())
	require.False(t, ok)
	require.Equal(t, "probe timed out", resp.Details["database"].Message)
	require.Less(t, time.Since(start), time.Second)
}

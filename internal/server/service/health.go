package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	serr "github.com/IvanChernomyrdin/go-users-api/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-users-api/internal/shared/logger"
	shared "github.com/IvanChernomyrdin/go-users-api/internal/shared/models"
)

const (
	indicatorDatabase = "database"

	statusOK    = "ok"
	statusError = "error"
	statusUp    = "up"
	statusDown  = "down"
)

// HealthService — liveness и readiness.
//
// Liveness не трогает зависимости. Readiness делает один Probe с таймаутом;
// причина сбоя пишется в лог, клиенту уходит только обобщённое сообщение.
type HealthService struct {
	repo    HealthRepo
	timeout time.Duration
	log     *logger.HTTPLogger
}

func NewHealthService(repo HealthRepo, timeout time.Duration, log *logger.HTTPLogger) *HealthService {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &HealthService{repo: repo, timeout: timeout, log: log}
}

// Liveness — процесс жив и отвечает.
func (s *HealthService) Liveness() shared.StatusResponse {
	return shared.StatusResponse{Status: statusOK}
}

// Readiness проверяет хранилище. ok=false означает 503.
func (s *HealthService) Readiness(ctx context.Context) (resp shared.ReadinessResponse, ok bool) {
	probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.repo.Probe(probeCtx)
	if err == nil {
		up := map[string]shared.IndicatorStatus{indicatorDatabase: {Status: statusUp}}
		return shared.ReadinessResponse{
			Status:  statusOK,
			Info:    up,
			Error:   map[string]shared.IndicatorStatus{},
			Details: up,
		}, true
	}

	msg := probeFailureMessage(probeCtx, err)
	s.log.Warn("readiness probe failed", zap.String("indicator", indicatorDatabase), zap.Error(err))

	down := map[string]shared.IndicatorStatus{indicatorDatabase: {Status: statusDown, Message: msg}}
	return shared.ReadinessResponse{
		Status:  statusError,
		Info:    map[string]shared.IndicatorStatus{},
		Error:   down,
		Details: down,
	}, false
}

// классы причин, которые можно показать клиенту
var probeCauses = []error{
	serr.ErrStoreUnreachable,
	serr.ErrStoreAuth,
	serr.ErrStoreMissingDatabase,
	serr.ErrStoreUnavailable,
	serr.ErrStoreNotConnected,
}

// probeFailureMessage: "probe timed out", "storage failure: <класс>" или "storage failure".
func probeFailureMessage(probeCtx context.Context, err error) string {
	if errors.Is(probeCtx.Err(), context.DeadlineExceeded) {
		return "probe timed out"
	}
	for _, cause := range probeCauses {
		if errors.Is(err, cause) {
			return "storage failure: " + cause.Error()
		}
	}
	return "storage failure"
}

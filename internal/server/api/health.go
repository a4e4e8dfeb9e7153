package api

import (
	"net/http"

	shared "github.com/IvanChernomyrdin/go-users-api/internal/shared/models"
)

// Root — статус сервиса на корне API.
//
// @Summary  API status
// @Tags     health
// @Produce  json
// @Success  200 {object} models.StatusResponse
// @Router   /api/v1 [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, shared.StatusResponse{Status: "ok"})
}

// Live — процесс жив. Хранилище не проверяется, ответ всегда 200.
//
// @Summary  Liveness probe
// @Tags     health
// @Produce  json
// @Success  200 {object} models.StatusResponse
// @Router   /health/live [get]
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Svc.Health.Liveness())
}

// Ready — готовность принимать трафик: 200 если база отвечает, иначе 503.
//
// @Summary  Readiness probe
// @Tags     health
// @Produce  json
// @Success  200 {object} models.ReadinessResponse
// @Failure  503 {object} models.ReadinessResponse "Database unavailable"
// @Router   /health/ready [get]
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	resp, ok := h.Svc.Health.Readiness(r.Context())
	status := http.StatusOK
	if !ok {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

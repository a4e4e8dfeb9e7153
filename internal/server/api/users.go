// HTTP-хендлеры CRUD пользователей
package api

import (
	"net/http"

	"github.com/IvanChernomyrdin/go-users-api/internal/server/models"
	shared "github.com/IvanChernomyrdin/go-users-api/internal/shared/models"
)

// CreateUser регистрирует пользователя.
//
// Ответы:
//   - 201 Created: пользователь создан, в теле PublicUser (без хэша пароля);
//   - 400 Bad Request: неверный JSON или невалидные поля;
//   - 409 Conflict: email уже занят;
//   - 500 Internal Server Error: прочие ошибки.
//
// @Summary      Create user
// @Description  Creates a user. The password is stored as a one-way hash and never returned.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body models.CreateUserRequest true "Create user request"
// @Success      201 {object} models.PublicUser
// @Failure      400 {object} models.ErrorResponse "Invalid input or bad JSON"
// @Failure      409 {object} models.ErrorResponse "Email already exists"
// @Failure      413 {object} models.ErrorResponse "Payload too large"
// @Failure      500 {object} models.ErrorResponse "Internal server error"
// @Router       /api/v1/users [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req shared.CreateUserRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.WriteError(w, r, err)
		return
	}

	user, err := h.Svc.Users.Create(r.Context(), req)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// ListUsers отдаёт страницу пользователей, новые первыми.
//
// @Summary      List users
// @Description  Returns a page of users ordered by creation time, newest first.
// @Tags         users
// @Produce      json
// @Param        page  query int false "Page number (>=1)" default(1)
// @Param        limit query int false "Page size (1..100)" default(25)
// @Success      200 {array}  models.PublicUser
// @Failure      400 {object} models.ErrorResponse "Invalid pagination"
// @Failure      500 {object} models.ErrorResponse "Internal server error"
// @Router       /api/v1/users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q, err := models.ParsePageQuery(r.URL.Query())
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	users, err := h.Svc.Users.List(r.Context(), q)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// GetUser отдаёт пользователя по id.
//
// @Summary      Get user
// @Tags         users
// @Produce      json
// @Param        id path int true "User ID"
// @Success      200 {object} models.PublicUser
// @Failure      400 {object} models.ErrorResponse "Invalid id"
// @Failure      404 {object} models.ErrorResponse "User not found"
// @Failure      500 {object} models.ErrorResponse "Internal server error"
// @Router       /api/v1/users/{id} [get]
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	user, err := h.Svc.Users.Get(r.Context(), id)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateUser применяет частичное обновление.
// Непереданные поля не меняются, firstName/lastName можно сбросить через null.
//
// @Summary      Update user
// @Description  Sparse update: only supplied fields change. An empty body is rejected.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id      path int                      true "User ID"
// @Param        request body models.UpdateUserRequest true "Fields to update"
// @Success      200 {object} models.PublicUser
// @Failure      400 {object} models.ErrorResponse "Invalid input, bad JSON or empty patch"
// @Failure      404 {object} models.ErrorResponse "User not found"
// @Failure      409 {object} models.ErrorResponse "Email already exists"
// @Failure      413 {object} models.ErrorResponse "Payload too large"
// @Failure      500 {object} models.ErrorResponse "Internal server error"
// @Router       /api/v1/users/{id} [patch]
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	var req shared.UpdateUserRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.WriteError(w, r, err)
		return
	}

	user, err := h.Svc.Users.Update(r.Context(), id, req)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// DeleteUser удаляет пользователя. Успех — 204 без тела.
//
// @Summary      Delete user
// @Tags         users
// @Produce      json
// @Param        id path int true "User ID"
// @Success      204 "No Content"
// @Failure      400 {object} models.ErrorResponse "Invalid id"
// @Failure      404 {object} models.ErrorResponse "User not found"
// @Failure      500 {object} models.ErrorResponse "Internal server error"
// @Router       /api/v1/users/{id} [delete]
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	if err := h.Svc.Users.Delete(r.Context(), id); err != nil {
		h.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

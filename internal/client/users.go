// В этом файле описаны методы клиента для CRUD пользователей и health-проб.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/IvanChernomyrdin/go-users-api/internal/server/models"
	shared "github.com/IvanChernomyrdin/go-users-api/internal/shared/models"
)

// CreateUser создаёт пользователя (POST /users).
func (c *Client) CreateUser(ctx context.Context, req shared.CreateUserRequest) (models.PublicUser, error) {
	var resp models.PublicUser
	err := c.do(ctx, http.MethodPost, c.apiPrefix+"/users", req, &resp)
	return resp, err
}

// ListUsers отдаёт страницу пользователей. page/limit <= 0 не передаются,
// тогда сервер применяет свои значения по умолчанию.
func (c *Client) ListUsers(ctx context.Context, page, limit int) ([]models.PublicUser, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := c.apiPrefix + "/users"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp []models.PublicUser
	err := c.do(ctx, http.MethodGet, path, nil, &resp)
	return resp, err
}

// GetUser отдаёт пользователя по id.
func (c *Client) GetUser(ctx context.Context, id int64) (models.PublicUser, error) {
	var resp models.PublicUser
	err := c.do(ctx, http.MethodGet, c.userPath(id), nil, &resp)
	return resp, err
}

// UpdateUser отправляет разреженный патч (PATCH /users/{id}).
// Поля с Set=false в тело не попадают.
func (c *Client) UpdateUser(ctx context.Context, id int64, req shared.UpdateUserRequest) (models.PublicUser, error) {
	body := map[string]any{}
	put := func(name string, v shared.Nullable[string]) {
		if v.Set {
			body[name] = v
		}
	}
	put("email", req.Email)
	put("password", req.Password)
	put("firstName", req.FirstName)
	put("lastName", req.LastName)

	var resp models.PublicUser
	err := c.do(ctx, http.MethodPatch, c.userPath(id), body, &resp)
	return resp, err
}

// DeleteUser удаляет пользователя.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, c.userPath(id), nil, nil)
}

// Live вызывает /health/live.
func (c *Client) Live(ctx context.Context) (shared.StatusResponse, error) {
	var resp shared.StatusResponse
	err := c.do(ctx, http.MethodGet, "/health/live", nil, &resp)
	return resp, err
}

// Ready вызывает /health/ready. Для 503 возвращает и тело отчёта, и ошибку.
func (c *Client) Ready(ctx context.Context) (shared.ReadinessResponse, error) {
	var resp shared.ReadinessResponse
	err := c.do(ctx, http.MethodGet, "/health/ready", nil, &resp)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusServiceUnavailable && resp.Status == "" {
		resp.Status = "error"
	}
	return resp, err
}

func (c *Client) userPath(id int64) string {
	return fmt.Sprintf("%s/users/%d", c.apiPrefix, id)
}

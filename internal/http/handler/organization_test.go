package handler

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"docflow/internal/model"
	"docflow/internal/repository/memory"
	"docflow/internal/service"
)

func newOrganizationApp() *fiber.App {
	log := zap.NewNop()
	departments := memory.NewDepartmentStore()
	memberships := memory.NewMembershipStore()
	documents := memory.NewDocumentStore()

	app := newTestApp()
	RegisterDocumentRoutes(app, DocumentRoutes{
		Departments: service.NewDepartmentService(departments, memberships, documents, log),
		Categories:  service.NewCategoryService(memory.NewCategoryStore(), documents),
		Memberships: service.NewMembershipService(memberships, departments, log),
	})
	return app
}

func admin(c call) call {
	c.user, c.roles = "root", "ROLE_ADMIN"
	return c
}

func TestDepartmentEndpoints(t *testing.T) {
	app := newOrganizationApp()

	resp := do(t, app, admin(call{method: http.MethodPost, path: "/api/v1/departments", body: map[string]string{"name": "Engineering"}}))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	eng := decode[model.Department](t, resp)
	assert.Equal(t, int64(1), eng.ID)

	t.Run("create requires admin", func(t *testing.T) {
		resp := do(t, app, call{method: http.MethodPost, path: "/api/v1/departments", body: map[string]string{"name": "Finance"}, user: "alice"})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("duplicate name", func(t *testing.T) {
		resp := do(t, app, admin(call{method: http.MethodPost, path: "/api/v1/departments", body: map[string]string{"name": "Engineering"}}))
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("blank name", func(t *testing.T) {
		resp := do(t, app, admin(call{method: http.MethodPost, path: "/api/v1/departments", body: map[string]string{"name": ""}}))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("list and get", func(t *testing.T) {
		resp := do(t, app, call{method: http.MethodGet, path: "/api/v1/departments", user: "alice"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, decode[[]model.Department](t, resp), 1)

		resp = do(t, app, call{method: http.MethodGet, path: "/api/v1/departments/1", user: "alice"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp = do(t, app, call{method: http.MethodGet, path: "/api/v1/departments/42", user: "alice"})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "DEPARTMENT_NOT_FOUND", decode[errorPayload](t, resp).Code)
	})

	t.Run("membership", func(t *testing.T) {
		assign := admin(call{method: http.MethodPost, path: "/api/v1/departments/1/users", body: map[string]string{"userId": "alice"}})
		assert.Equal(t, http.StatusNoContent, do(t, app, assign).StatusCode)
		assert.Equal(t, http.StatusNoContent, do(t, app, assign).StatusCode)

		resp := do(t, app, admin(call{method: http.MethodGet, path: "/api/v1/departments/1/users"}))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, []string{"alice"}, decode[departmentUsersResponse](t, resp).Users)

		resp = do(t, app, call{method: http.MethodGet, path: "/api/v1/departments/mine", user: "alice"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		mine := decode[[]model.Department](t, resp)
		require.Len(t, mine, 1)
		assert.Equal(t, "Engineering", mine[0].Name)

		resp = do(t, app, call{method: http.MethodGet, path: "/api/v1/departments/mine", user: "bob"})
		assert.Empty(t, decode[[]model.Department](t, resp))

		resp = do(t, app, admin(call{method: http.MethodPost, path: "/api/v1/departments/42/users", body: map[string]string{"userId": "alice"}}))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = do(t, app, admin(call{method: http.MethodDelete, path: "/api/v1/departments/1/users/alice"}))
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = do(t, app, admin(call{method: http.MethodDelete, path: "/api/v1/departments/1/users/alice"}))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "ASSIGNMENT_NOT_FOUND", decode[errorPayload](t, resp).Code)
	})

	t.Run("update and delete", func(t *testing.T) {
		resp := do(t, app, admin(call{method: http.MethodPut, path: "/api/v1/departments/1", body: map[string]string{"name": "R&D"}}))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "R&D", decode[model.Department](t, resp).Name)

		resp = do(t, app, admin(call{method: http.MethodDelete, path: "/api/v1/departments/1"}))
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = do(t, app, admin(call{method: http.MethodDelete, path: "/api/v1/departments/1"}))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestCategoryEndpoints(t *testing.T) {
	app := newOrganizationApp()

	resp := do(t, app, admin(call{method: http.MethodPost, path: "/api/v1/categories", body: map[string]string{"name": "Reports"}}))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cat := decode[model.Category](t, resp)

	resp = do(t, app, call{method: http.MethodGet, path: "/api/v1/categories", user: "alice"})
	assert.Len(t, decode[[]model.Category](t, resp), 1)

	resp = do(t, app, call{method: http.MethodGet, path: "/api/v1/categories/abc", user: "alice"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, app, admin(call{method: http.MethodPut, path: "/api/v1/categories/1", body: map[string]string{"name": "Minutes"}}))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, app, call{method: http.MethodGet, path: "/api/v1/categories/1", user: "alice"})
	assert.Equal(t, "Minutes", decode[model.Category](t, resp).Name)
	assert.Equal(t, int64(1), cat.ID)

	resp = do(t, app, admin(call{method: http.MethodDelete, path: "/api/v1/categories/1"}))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, app, call{method: http.MethodGet, path: "/api/v1/categories/1", user: "alice"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

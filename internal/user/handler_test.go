package user_test

import (
	"fmt"
	"testing"

	"github.com/sahabattani/backend/internal/models"
	"github.com/sahabattani/backend/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminUserManagement(t *testing.T) {
	env := testutils.SetupTestApp(t)
	admin := testutils.CreateTestUser(t, env.DB, "admin@example.com", "rahasia123", models.RoleAdmin)
	member := testutils.CreateTestUser(t, env.DB, "member@example.com", "rahasia123", models.RoleUser)
	adminToken := testutils.GetAuthToken(t, env, admin)
	memberToken := testutils.GetAuthToken(t, env, member)

	t.Run("Error - non admin is forbidden", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "GET", "/api/users", nil, memberToken)
		require.NoError(t, err)
		assert.Equal(t, 403, resp.Code)
		testutils.AssertError(t, resp, "FORBIDDEN")
	})

	t.Run("Success - list with search", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "GET", "/api/users?q=member", nil, adminToken)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var users []map[string]interface{}
		result := testutils.AssertSuccess(t, resp)
		result.DataAs(t, &users)
		require.Len(t, users, 1)
		assert.Equal(t, "member@example.com", users[0]["email"])
		assert.NotContains(t, users[0], "password")
		assert.Contains(t, result.Meta, "pagination")
	})

	t.Run("Success - get", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "GET", fmt.Sprintf("/api/users/%d", member.ID), nil, adminToken)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.Code)
	})

	t.Run("Error - get missing user", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "GET", "/api/users/9999", nil, adminToken)
		require.NoError(t, err)
		assert.Equal(t, 404, resp.Code)
	})

	t.Run("Success - promote", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "PUT", fmt.Sprintf("/api/users/%d", member.ID), map[string]interface{}{
			"role": "admin",
		}, adminToken)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var u map[string]interface{}
		result := testutils.AssertSuccess(t, resp)
		result.DataAs(t, &u)
		assert.Equal(t, "admin", u["role"])
	})

	t.Run("Error - invalid role", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "PUT", fmt.Sprintf("/api/users/%d", member.ID), map[string]interface{}{
			"role": "superuser",
		}, adminToken)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.Code)
	})

	t.Run("Error - cannot demote self", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "PUT", fmt.Sprintf("/api/users/%d", admin.ID), map[string]interface{}{
			"role": "user",
		}, adminToken)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.Code)
	})

	t.Run("Error - cannot deactivate self", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "DELETE", fmt.Sprintf("/api/users/%d", admin.ID), nil, adminToken)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.Code)
	})

	t.Run("Success - deactivate keeps the row", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "DELETE", fmt.Sprintf("/api/users/%d", member.ID), nil, adminToken)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var stored models.User
		require.NoError(t, env.DB.First(&stored, member.ID).Error)
		assert.False(t, stored.IsActive)
		assert.Nil(t, stored.RefreshToken)

		resp, err = testutils.MakeRequest(env.App, "GET", "/api/auth/profile", nil, memberToken)
		require.NoError(t, err)
		assert.Equal(t, 401, resp.Code)
	})
}

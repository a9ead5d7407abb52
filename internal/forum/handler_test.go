package forum_test

import (
	"fmt"
	"testing"

	"github.com/sahabattani/backend/internal/models"
	"github.com/sahabattani/backend/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postData struct {
	ID      uint   `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  *struct {
		ID    uint   `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"author"`
}

func createPost(t *testing.T, env *testutils.TestEnv, token, title, content string) postData {
	t.Helper()
	resp, err := testutils.MakeRequest(env.App, "POST", "/api/posts", map[string]string{
		"title": title, "content": content,
	}, token)
	require.NoError(t, err)
	require.Equal(t, 201, resp.Code, resp.Body.String())

	var p postData
	result := testutils.AssertSuccess(t, resp)
	result.DataAs(t, &p)
	return p
}

func TestPosts(t *testing.T) {
	env := testutils.SetupTestApp(t)
	author := testutils.CreateTestUser(t, env.DB, "penulis@example.com", "rahasia123", models.RoleUser)
	other := testutils.CreateTestUser(t, env.DB, "lain@example.com", "rahasia123", models.RoleUser)
	authorToken := testutils.GetAuthToken(t, env, author)
	otherToken := testutils.GetAuthToken(t, env, other)

	first := createPost(t, env, authorToken, "Padi menguning", "Daun padi saya <b>menguning</b>")
	second := createPost(t, env, authorToken, "<script>alert(1)</script>Hama wereng", `Ada wereng <img src=x onerror="alert(1)">`)

	t.Run("Success - create sanitizes and carries the author", func(t *testing.T) {
		assert.Equal(t, "Daun padi saya <b>menguning</b>", first.Content)
		require.NotNil(t, first.Author)
		assert.Equal(t, author.ID, first.Author.ID)
		assert.Equal(t, "penulis@example.com", first.Author.Email)

		assert.Equal(t, "Hama wereng", second.Title)
		assert.NotContains(t, second.Content, "onerror")
	})

	t.Run("Error - empty after sanitizing", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "POST", "/api/posts", map[string]string{
			"title": "<script></script>", "content": "isi",
		}, authorToken)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.Code)
	})

	t.Run("Error - create needs a token", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "POST", "/api/posts", map[string]string{
			"title": "x", "content": "y",
		}, "")
		require.NoError(t, err)
		assert.Equal(t, 401, resp.Code)
	})

	t.Run("Success - list newest first", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "GET", "/api/posts", nil, "")
		require.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var posts []postData
		result := testutils.AssertSuccess(t, resp)
		result.DataAs(t, &posts)
		require.Len(t, posts, 2)
		assert.Equal(t, second.ID, posts[0].ID)
		assert.NotNil(t, posts[0].Author)
	})

	t.Run("Success - search", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "GET", "/api/posts?q=WERENG", nil, "")
		require.NoError(t, err)

		var posts []postData
		result := testutils.AssertSuccess(t, resp)
		result.DataAs(t, &posts)
		require.Len(t, posts, 1)
		assert.Equal(t, second.ID, posts[0].ID)
	})

	t.Run("Error - other user cannot edit", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "PUT", fmt.Sprintf("/api/posts/%d", first.ID), map[string]string{
			"title": "Diubah",
		}, otherToken)
		require.NoError(t, err)
		assert.Equal(t, 403, resp.Code)
		result := testutils.AssertError(t, resp, "FORBIDDEN")
		assert.Equal(t, "Tidak diizinkan mengedit post orang lain", result.Message)
	})

	t.Run("Success - update keeps missing fields", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "PUT", fmt.Sprintf("/api/posts/%d", first.ID), map[string]string{
			"title": "Padi menguning setelah hujan",
		}, authorToken)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var p postData
		result := testutils.AssertSuccess(t, resp)
		result.DataAs(t, &p)
		assert.Equal(t, "Padi menguning setelah hujan", p.Title)
		assert.Equal(t, first.Content, p.Content)
	})

	t.Run("Error - other user cannot delete", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "DELETE", fmt.Sprintf("/api/posts/%d", first.ID), nil, otherToken)
		require.NoError(t, err)
		assert.Equal(t, 403, resp.Code)
	})

	t.Run("Success - author deletes", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "DELETE", fmt.Sprintf("/api/posts/%d", first.ID), nil, authorToken)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		resp, err = testutils.MakeRequest(env.App, "GET", fmt.Sprintf("/api/posts/%d", first.ID), nil, "")
		require.NoError(t, err)
		assert.Equal(t, 404, resp.Code)
		testutils.AssertError(t, resp, "NOT_FOUND")
	})

	t.Run("Error - bad id", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "GET", "/api/posts/abc", nil, "")
		require.NoError(t, err)
		assert.Equal(t, 400, resp.Code)
	})
}

package news_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sahabattani/backend/internal/apperror"
	"github.com/sahabattani/backend/internal/news"
	"github.com/sahabattani/backend/internal/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSource struct {
	params url.Values
	err    error
}

func (r *recordingSource) Everything(_ context.Context, p url.Values) (json.RawMessage, error) {
	r.params = p
	return json.RawMessage(`{"articles":[]}`), r.err
}

func (r *recordingSource) Sources(_ context.Context, p url.Values) (json.RawMessage, error) {
	r.params = p
	return json.RawMessage(`{"sources":[]}`), r.err
}

func newsApp(src news.Source) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: response.ErrorHandler(zap.NewNop())})
	h := news.NewHandler(src)
	app.Get("/news", h.Everything)
	app.Get("/news/sources", h.Sources)
	return app
}

func TestHandler(t *testing.T) {
	t.Run("Success - defaults", func(t *testing.T) {
		src := &recordingSource{}
		resp, err := newsApp(src).Test(httptest.NewRequest("GET", "/news", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, "pertanian", src.params.Get("q"))
		assert.Equal(t, "id", src.params.Get("language"))
		assert.NotContains(t, src.params, "page")

		body, _ := io.ReadAll(resp.Body)
		var env map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &env))
		assert.Contains(t, env["data"], "articles")
	})

	t.Run("Success - optional params are forwarded", func(t *testing.T) {
		src := &recordingSource{}
		_, err := newsApp(src).Test(httptest.NewRequest("GET", "/news?q=padi&page=2&sortBy=publishedAt&language=en", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, "padi", src.params.Get("q"))
		assert.Equal(t, "2", src.params.Get("page"))
		assert.Equal(t, "publishedAt", src.params.Get("sortBy"))
		assert.Equal(t, "en", src.params.Get("language"))
	})

	t.Run("Success - sources", func(t *testing.T) {
		src := &recordingSource{}
		resp, err := newsApp(src).Test(httptest.NewRequest("GET", "/news/sources?category=science", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, "science", src.params.Get("category"))
		assert.Equal(t, "id", src.params.Get("language"))
	})

	t.Run("Error - upstream status is passed through", func(t *testing.T) {
		src := &recordingSource{err: apperror.Upstream("x", "news API rate limit exceeded").WithStatus(429)}
		resp, err := newsApp(src).Test(httptest.NewRequest("GET", "/news", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, 429, resp.StatusCode)
	})
}

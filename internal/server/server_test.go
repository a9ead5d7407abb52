package server_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sahabattani/backend/internal/models"
	"github.com/sahabattani/backend/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	env := testutils.SetupTestApp(t)

	resp, err := testutils.MakeRequest(env.App, "GET", "/health", nil, "")
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Code)
	assert.NotEmpty(t, resp.Header().Get("X-Request-ID"))

	var data map[string]interface{}
	result := testutils.AssertSuccess(t, resp)
	result.DataAs(t, &data)
	assert.Equal(t, "local", data["storage"])
}

func TestUnknownRoute(t *testing.T) {
	env := testutils.SetupTestApp(t)

	resp, err := testutils.MakeRequest(env.App, "GET", "/api/nope", nil, "")
	require.NoError(t, err)
	assert.Equal(t, 404, resp.Code)
	testutils.AssertError(t, resp, "NOT_FOUND")
}

func TestPredictFlow(t *testing.T) {
	env := testutils.SetupTestApp(t)
	u := testutils.CreateTestUser(t, env.DB, "petani@example.com", "rahasia123", models.RoleUser)
	token := testutils.GetAuthToken(t, env, u)

	t.Run("Success - anonymous prediction", func(t *testing.T) {
		resp, err := testutils.MakeImageRequest(env.App, "/api/predict", "image", "daun.png", "image/png", testutils.PNG(t), "")
		require.NoError(t, err)
		require.Equal(t, 200, resp.Code, resp.Body.String())

		var data struct {
			DiseaseKey string `json:"diseaseKey"`
			Image      struct {
				Path string `json:"path"`
			} `json:"image"`
		}
		result := testutils.AssertSuccess(t, resp)
		result.DataAs(t, &data)
		assert.Equal(t, "brown_spot", data.DiseaseKey)
		assert.Empty(t, data.Image.Path)
	})

	t.Run("Success - stored image is served and can be saved as an analysis", func(t *testing.T) {
		resp, err := testutils.MakeImageRequest(env.App, "/api/predict", "image", "daun.png", "image/png", testutils.PNG(t), token)
		require.NoError(t, err)
		require.Equal(t, 200, resp.Code, resp.Body.String())

		var data struct {
			TopPrediction struct {
				TagName     string  `json:"tagName"`
				Probability float64 `json:"probability"`
			} `json:"topPrediction"`
			Image struct {
				Path string `json:"path"`
				Size int64  `json:"size"`
			} `json:"image"`
		}
		result := testutils.AssertSuccess(t, resp)
		result.DataAs(t, &data)
		require.True(t, strings.HasPrefix(data.Image.Path, "/uploads/detections/"))

		onDisk := filepath.Join(env.Config.UploadDir, strings.TrimPrefix(data.Image.Path, "/uploads/"))
		_, err = os.Stat(onDisk)
		require.NoError(t, err)

		served, err := testutils.MakeRequest(env.App, "GET", data.Image.Path, nil, "")
		require.NoError(t, err)
		assert.Equal(t, 200, served.Code)

		saved, err := testutils.MakeRequest(env.App, "POST", "/api/analysis", map[string]interface{}{
			"prediction":       data.TopPrediction.TagName,
			"confidence":       data.TopPrediction.Probability,
			"imagePath":        data.Image.Path,
			"imageSize":        data.Image.Size,
			"originalFileName": "daun.png",
		}, token)
		require.NoError(t, err)
		assert.Equal(t, 201, saved.Code)

		var created struct {
			ID uint `json:"id"`
		}
		createdResult := testutils.AssertSuccess(t, saved)
		createdResult.DataAs(t, &created)

		deleted, err := testutils.MakeRequest(env.App, "DELETE", fmt.Sprintf("/api/analysis/%d", created.ID), nil, token)
		require.NoError(t, err)
		assert.Equal(t, 200, deleted.Code)

		_, err = os.Stat(onDisk)
		assert.True(t, os.IsNotExist(err), "image should be removed with its analysis")
	})

	t.Run("Error - text file", func(t *testing.T) {
		resp, err := testutils.MakeImageRequest(env.App, "/api/predict", "image", "a.txt", "text/plain", []byte("hi"), "")
		require.NoError(t, err)
		assert.Equal(t, 400, resp.Code)
		testutils.AssertError(t, resp, "VALIDATION_ERROR")
	})
}

func TestNewsWithoutKey(t *testing.T) {
	env := testutils.SetupTestApp(t)

	resp, err := testutils.MakeRequest(env.App, "GET", "/api/news", nil, "")
	require.NoError(t, err)
	assert.Equal(t, 500, resp.Code)
	testutils.AssertError(t, resp, "UPSTREAM_ERROR")
}

func TestDiseaseRoutes(t *testing.T) {
	env := testutils.SetupTestApp(t)

	resp, err := testutils.MakeRequest(env.App, "GET", "/api/diseases/resolve?tag=hispa", nil, "")
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Code)

	var data struct {
		Key string `json:"key"`
	}
	result := testutils.AssertSuccess(t, resp)
	result.DataAs(t, &data)
	assert.Equal(t, "rice_hispa", data.Key)
}

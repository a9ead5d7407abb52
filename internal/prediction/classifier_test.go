package prediction_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sahabattani/backend/internal/apperror"
	"github.com/sahabattani/backend/internal/config"
	"github.com/sahabattani/backend/internal/prediction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visionConfig(endpoint string) *config.Config {
	return &config.Config{
		AzurePredictionKey: "key-123",
		AzureEndpoint:      endpoint,
		AzureProjectID:     "proj",
		AzurePublishedName: "Iteration3",
		UpstreamTimeout:    5 * time.Second,
	}
}

func TestCustomVisionClient(t *testing.T) {
	t.Run("Success - posts raw bytes with prediction key", func(t *testing.T) {
		var gotPath, gotKey, gotType string
		var gotBody []byte
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotKey = r.Header.Get("Prediction-Key")
			gotType = r.Header.Get("Content-Type")
			gotBody, _ = io.ReadAll(r.Body)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"iteration": "Iteration3",
				"predictions": []map[string]interface{}{
					{"tagName": "leaf_blast", "probability": 0.9},
				},
			})
		}))
		defer srv.Close()

		client := prediction.NewCustomVisionClient(visionConfig(srv.URL))
		result, err := client.Classify(context.Background(), []byte{1, 2, 3})
		require.NoError(t, err)

		assert.Equal(t, "/customvision/v3.0/Prediction/proj/classify/iterations/Iteration3/image", gotPath)
		assert.Equal(t, "key-123", gotKey)
		assert.Equal(t, "application/octet-stream", gotType)
		assert.Equal(t, []byte{1, 2, 3}, gotBody)
		require.Len(t, result.Predictions, 1)
		assert.Equal(t, "leaf_blast", result.Predictions[0].TagName)
	})

	t.Run("Error - upstream rejects", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":"Unauthorized","message":"Invalid prediction key"}`))
		}))
		defer srv.Close()

		_, err := prediction.NewCustomVisionClient(visionConfig(srv.URL)).Classify(context.Background(), []byte{1})
		require.Error(t, err)
		appErr := apperror.As(err)
		assert.Equal(t, apperror.KindUpstream, appErr.Kind)
		assert.Contains(t, appErr.Details, "Invalid prediction key")
	})

	t.Run("Error - not configured", func(t *testing.T) {
		_, err := prediction.NewCustomVisionClient(&config.Config{}).Classify(context.Background(), []byte{1})
		assert.ErrorIs(t, err, prediction.ErrNotConfigured)
	})
}

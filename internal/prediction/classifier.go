package prediction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahabattani/backend/internal/apperror"
	"github.com/sahabattani/backend/internal/config"
)

var ErrNotConfigured = errors.New("custom vision is not configured")

type Prediction struct {
	TagID       string  `json:"tagId,omitempty"`
	TagName     string  `json:"tagName"`
	Probability float64 `json:"probability"`
}

type Result struct {
	ID          string       `json:"id"`
	Project     string       `json:"project"`
	Iteration   string       `json:"iteration"`
	Created     string       `json:"created"`
	Predictions []Prediction `json:"predictions"`
}

// Top returns the prediction with the highest probability. Ties keep the
// earlier entry.
func (r *Result) Top() (Prediction, bool) {
	if r == nil || len(r.Predictions) == 0 {
		return Prediction{}, false
	}
	best := r.Predictions[0]
	for _, p := range r.Predictions[1:] {
		if p.Probability > best.Probability {
			best = p
		}
	}
	return best, true
}

type Classifier interface {
	Classify(ctx context.Context, image []byte) (*Result, error)
}

// CustomVisionClient calls the Azure Custom Vision prediction endpoint for a
// published classification iteration.
type CustomVisionClient struct {
	url     string
	key     string
	timeout time.Duration
}

func NewCustomVisionClient(cfg *config.Config) *CustomVisionClient {
	c := &CustomVisionClient{key: cfg.AzurePredictionKey, timeout: cfg.UpstreamTimeout}
	if cfg.ClassifierConfigured() {
		c.url = fmt.Sprintf("%s/customvision/v3.0/Prediction/%s/classify/iterations/%s/image",
			strings.TrimRight(cfg.AzureEndpoint, "/"), cfg.AzureProjectID, cfg.AzurePublishedName)
	}
	return c
}

type upstreamError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *CustomVisionClient) Classify(_ context.Context, image []byte) (*Result, error) {
	if c.url == "" {
		return nil, ErrNotConfigured
	}

	agent := fiber.Post(c.url)
	agent.Set(fiber.HeaderContentType, "application/octet-stream")
	agent.Set("Prediction-Key", c.key)
	agent.Body(image)
	if c.timeout > 0 {
		agent.Timeout(c.timeout)
	}
	if err := agent.Parse(); err != nil {
		return nil, apperror.Upstream("Prediksi gagal", "invalid classifier endpoint").Wrap(err)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, apperror.Upstream("Prediksi gagal", "classifier unreachable").Wrap(errors.Join(errs...))
	}

	if code < 200 || code >= 300 {
		var ue upstreamError
		details := []string{fmt.Sprintf("classifier responded with status %d", code)}
		if json.Unmarshal(body, &ue) == nil && ue.Message != "" {
			details = append(details, ue.Message)
		}
		return nil, apperror.Upstream("Prediksi gagal", details...)
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apperror.Upstream("Prediksi gagal", "malformed classifier response").Wrap(err)
	}
	return &result, nil
}

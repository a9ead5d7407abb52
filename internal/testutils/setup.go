package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/sahabattani/backend/internal/config"
	"github.com/sahabattani/backend/internal/database"
	"github.com/sahabattani/backend/internal/models"
	"github.com/sahabattani/backend/internal/prediction"
	"github.com/sahabattani/backend/internal/server"
	"github.com/sahabattani/backend/internal/storage"
	"github.com/sahabattani/backend/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type TestEnv struct {
	App        *fiber.App
	DB         *gorm.DB
	Config     *config.Config
	Tokens     *utils.TokenManager
	Classifier *StubClassifier
	Storage    *storage.LocalStorage
}

// StubClassifier answers every request with Result, or Err when set.
type StubClassifier struct {
	Result *prediction.Result
	Err    error
	Calls  int
}

func (s *StubClassifier) Classify(_ context.Context, _ []byte) (*prediction.Result, error) {
	s.Calls++
	return s.Result, s.Err
}

func TestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Environment:     "test",
		CORSOrigins:     "*",
		JWTSecret:       config.TestJWTSecret,
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		AccessIssuer:    "plant-disease-detection-api",
		RefreshIssuer:   "sahabat-tani-api",
		BcryptCost:      bcrypt.MinCost,
		UpstreamTimeout: 5 * time.Second,
		NewsAPIBaseURL:  "http://127.0.0.1:1",
		UploadDir:       t.TempDir(),
		MaxUploadSize:   4 << 20,
	}
}

func TestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "Failed to create test database")

	// every pooled connection to :memory: would get its own empty database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db), "Failed to migrate test database")
	return db
}

func SetupTestApp(t *testing.T) *TestEnv {
	t.Helper()
	cfg := TestConfig(t)
	db := TestDB(t)

	store, err := storage.NewLocalStorage(cfg.UploadDir)
	require.NoError(t, err, "Failed to initialize storage")

	classifier := &StubClassifier{Result: &prediction.Result{
		Iteration: "Iteration1",
		Predictions: []prediction.Prediction{
			{TagName: "Brown_Spot", Probability: 0.91},
			{TagName: "Healthy", Probability: 0.09},
		},
	}}

	app := server.New(server.Dependencies{
		Config:     cfg,
		DB:         db,
		Logger:     zap.NewNop(),
		Storage:    store,
		Classifier: classifier,
	})

	return &TestEnv{
		App:        app,
		DB:         db,
		Config:     cfg,
		Tokens:     utils.NewTokenManager(cfg),
		Classifier: classifier,
		Storage:    store,
	}
}

func CreateTestUser(t *testing.T, db *gorm.DB, email, password, role string) *models.User {
	t.Helper()
	hashed, err := utils.NewPasswordHasher(bcrypt.MinCost).Hash(password)
	require.NoError(t, err)

	user := &models.User{
		Name:     "Test User",
		Email:    email,
		Password: hashed,
		Provider: models.ProviderLocal,
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error, "Failed to create test user")
	return user
}

func GetAuthToken(t *testing.T, env *TestEnv, user *models.User) string {
	t.Helper()
	token, err := env.Tokens.IssueAccessToken(utils.Subject{ID: user.ID, Email: user.Email, Role: user.Role})
	require.NoError(t, err, "Failed to generate test token")
	return token
}

func send(app *fiber.App, req *http.Request, token string) (*httptest.ResponseRecorder, error) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	resp, err := app.Test(req, -1)
	if err != nil {
		return rec, err
	}

	rec.Code = resp.StatusCode
	for k, v := range resp.Header {
		for _, val := range v {
			rec.Header().Add(k, val)
		}
	}
	_, _ = io.Copy(rec.Body, resp.Body)
	resp.Body.Close()

	return rec, nil
}

func MakeRequest(app *fiber.App, method, url string, body interface{}, token string) (*httptest.ResponseRecorder, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, url, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	return send(app, req, token)
}

// MakeImageRequest posts data as a single multipart file part with an explicit
// content type.
func MakeImageRequest(app *fiber.App, url, field, filename, contentType string, data []byte, token string) (*httptest.ResponseRecorder, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req := httptest.NewRequest(fiber.MethodPost, url, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return send(app, req, token)
}

// PNG returns a small valid PNG image.
func PNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	img.Set(1, 1, color.RGBA{G: 180, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func ParseResponse(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if resp.Body.Len() == 0 {
		t.Log("Warning: Response body is empty")
		return
	}

	if err := json.Unmarshal(resp.Body.Bytes(), v); err != nil {
		t.Logf("Response body: %s", resp.Body.String())
		assert.NoError(t, err, "Failed to parse response")
	}
}

type StandardResponse struct {
	Status    string                 `json:"status"`
	Message   string                 `json:"message"`
	Timestamp string                 `json:"timestamp"`
	Data      json.RawMessage        `json:"data"`
	Meta      map[string]interface{} `json:"meta"`
	Errors    []string               `json:"errors"`
	Code      string                 `json:"code"`
}

// DataAs decodes the data member into v.
func (r *StandardResponse) DataAs(t *testing.T, v interface{}) {
	t.Helper()
	require.NotEmpty(t, r.Data, "response has no data")
	require.NoError(t, json.Unmarshal(r.Data, v))
}

func Parse(t *testing.T, resp *httptest.ResponseRecorder) StandardResponse {
	t.Helper()
	var result StandardResponse
	ParseResponse(t, resp, &result)
	return result
}

func AssertSuccess(t *testing.T, resp *httptest.ResponseRecorder) StandardResponse {
	t.Helper()
	result := Parse(t, resp)
	assert.Equal(t, "success", result.Status, "Expected success response: %s", resp.Body.String())
	assert.Empty(t, result.Errors, "Expected no errors")
	return result
}

func AssertError(t *testing.T, resp *httptest.ResponseRecorder, expectedCode string) StandardResponse {
	t.Helper()
	result := Parse(t, resp)
	assert.Equal(t, "error", result.Status, "Expected error response")
	assert.Equal(t, expectedCode, result.Code, "Error code mismatch")
	return result
}

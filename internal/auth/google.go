package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahabattani/backend/internal/apperror"
	"github.com/sahabattani/backend/internal/config"
	"github.com/sahabattani/backend/internal/response"
	"github.com/sahabattani/backend/internal/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	stateTTL          = 5 * time.Minute
	stateLength       = 40
)

type GoogleUser struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	VerifiedEmail bool   `json:"verified_email"`
}

// stateStore keeps OAuth state values until they are used once or expire.
type stateStore struct {
	mu     sync.Mutex
	states map[string]time.Time
	now    func() time.Time
}

func newStateStore() *stateStore {
	return &stateStore{states: make(map[string]time.Time), now: time.Now}
}

func (s *stateStore) issue() (string, error) {
	state, err := utils.RandomString(stateLength)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, exp := range s.states {
		if now.After(exp) {
			delete(s.states, k)
		}
	}
	s.states[state] = now.Add(stateTTL)
	return state, nil
}

func (s *stateStore) consume(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.states[state]
	if !ok {
		return false
	}
	delete(s.states, state)
	return !s.now().After(exp)
}

type GoogleHandler struct {
	service *Service
	oauth   *oauth2.Config
	states  *stateStore
	// fetchUser is replaced in tests.
	fetchUser func(ctx context.Context, code string) (*GoogleUser, error)
}

func NewGoogleHandler(cfg *config.Config, service *Service) *GoogleHandler {
	h := &GoogleHandler{
		service: service,
		states:  newStateStore(),
	}
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		h.oauth = &oauth2.Config{
			RedirectURL:  cfg.GoogleRedirectURL,
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		}
	}
	h.fetchUser = h.exchange
	return h
}

func (h *GoogleHandler) Enabled() bool {
	return h.oauth != nil
}

func (h *GoogleHandler) Login(c *fiber.Ctx) error {
	if !h.Enabled() {
		return apperror.NotFound("Login Google tidak tersedia", "google login is not configured")
	}

	state, err := h.states.issue()
	if err != nil {
		return apperror.Internal("Gagal memulai login Google", err)
	}
	return c.Redirect(h.oauth.AuthCodeURL(state), fiber.StatusTemporaryRedirect)
}

func (h *GoogleHandler) Callback(c *fiber.Ctx) error {
	if !h.Enabled() {
		return apperror.NotFound("Login Google tidak tersedia", "google login is not configured")
	}
	if !h.states.consume(c.Query("state")) {
		return apperror.Validation("Login Google gagal", "invalid state parameter")
	}

	code := c.Query("code")
	if code == "" {
		return apperror.Validation("Login Google gagal", "code is required")
	}

	gu, err := h.fetchUser(c.UserContext(), code)
	if err != nil {
		return apperror.Upstream("Login Google gagal", "failed to fetch google profile").Wrap(err)
	}
	if gu.Email == "" || !gu.VerifiedEmail {
		return apperror.Authentication("Login Google gagal", "google account email is not verified")
	}

	session, err := h.service.LoginWithGoogle(c.UserContext(), gu.Email, gu.Name)
	if err != nil {
		return err
	}
	return response.Success(c, sessionPayload(session), "Login berhasil")
}

func (h *GoogleHandler) exchange(ctx context.Context, code string) (*GoogleUser, error) {
	token, err := h.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	client := h.oauth.Client(ctx, token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get user info: status %d", resp.StatusCode)
	}

	var gu GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	return &gu, nil
}

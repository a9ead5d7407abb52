package auth

import (
	"context"
	"strings"
	"time"

	"github.com/sahabattani/backend/internal/apperror"
	"github.com/sahabattani/backend/internal/models"
	"github.com/sahabattani/backend/internal/user"
	"github.com/sahabattani/backend/internal/utils"
)

const recentDetectionLimit = 5

// RecentDetections supplies the detection summary shown on the profile page.
type RecentDetections interface {
	RecentByUser(ctx context.Context, userID uint, limit int) ([]models.Detection, error)
}

type Session struct {
	User   *models.User
	Tokens utils.TokenPair
}

type DetectionSummary struct {
	ID         uint      `json:"id"`
	PlantType  string    `json:"plantType"`
	Prediction string    `json:"prediction"`
	DiseaseKey string    `json:"diseaseKey"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Profile struct {
	*models.User
	Detections []DetectionSummary `json:"detections"`
}

type Service struct {
	users      *user.Repository
	hasher     *utils.PasswordHasher
	tokens     *utils.TokenManager
	detections RecentDetections
	now        func() time.Time
}

func NewService(users *user.Repository, hasher *utils.PasswordHasher, tokens *utils.TokenManager, detections RecentDetections) *Service {
	return &Service{
		users:      users,
		hasher:     hasher,
		tokens:     tokens,
		detections: detections,
		now:        time.Now,
	}
}

func invalidCredentials() error {
	return apperror.Authentication("Login gagal", "invalid credentials")
}

func (s *Service) Register(ctx context.Context, name, email, password string) (*Session, error) {
	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperror.Internal("Registrasi gagal", err)
	}

	u := &models.User{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: digest,
		Provider: models.ProviderLocal,
		Role:     models.RoleUser,
		IsActive: true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	return s.startSession(ctx, u)
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, invalidCredentials()
		}
		return nil, err
	}
	if !u.IsActive || u.Password == "" {
		return nil, invalidCredentials()
	}

	ok, err := s.hasher.Verify(password, u.Password)
	if err != nil || !ok {
		return nil, invalidCredentials()
	}

	return s.startSession(ctx, u)
}

// LoginWithGoogle signs in the account for a verified Google email, creating
// it on first use.
func (s *Service) LoginWithGoogle(ctx context.Context, email, name string) (*Session, error) {
	u, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if !u.IsActive {
			return nil, invalidCredentials()
		}
	case apperror.Is(err, apperror.KindNotFound):
		if name == "" {
			name = strings.Split(email, "@")[0]
		}
		if len([]rune(name)) > utils.MaxNameLength {
			name = string([]rune(name)[:utils.MaxNameLength])
		}
		u = &models.User{
			Name:     name,
			Email:    email,
			Provider: models.ProviderGoogle,
			Role:     models.RoleUser,
			IsActive: true,
		}
		if err := s.users.Create(ctx, u); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return s.startSession(ctx, u)
}

// startSession issues a token pair and stores the refresh token digest,
// replacing whatever token the user held before.
func (s *Service) startSession(ctx context.Context, u *models.User) (*Session, error) {
	pair, err := s.tokens.IssuePair(subjectOf(u))
	if err != nil {
		return nil, apperror.Internal("Gagal membuat token", err)
	}

	now := s.now()
	if err := s.users.RecordLogin(ctx, u.ID, utils.HashToken(pair.RefreshToken), now); err != nil {
		return nil, err
	}
	u.LastLogin = &now

	return &Session{User: u, Tokens: pair}, nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (utils.TokenPair, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return utils.TokenPair{}, apperror.Authentication("Refresh token gagal", "invalid or expired refresh token")
	}

	u, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return utils.TokenPair{}, apperror.Authentication("Refresh token gagal", "invalid refresh token")
		}
		return utils.TokenPair{}, err
	}
	if !u.IsActive || u.RefreshToken == nil || *u.RefreshToken != utils.HashToken(refreshToken) {
		return utils.TokenPair{}, apperror.Authentication("Refresh token gagal", "invalid refresh token")
	}

	pair, err := s.tokens.IssuePair(subjectOf(u))
	if err != nil {
		return utils.TokenPair{}, apperror.Internal("Gagal membuat token", err)
	}

	digest := utils.HashToken(pair.RefreshToken)
	if err := s.users.SetRefreshToken(ctx, u.ID, &digest); err != nil {
		return utils.TokenPair{}, err
	}
	return pair, nil
}

func (s *Service) Logout(ctx context.Context, userID uint) error {
	return s.users.SetRefreshToken(ctx, userID, nil)
}

func (s *Service) Profile(ctx context.Context, userID uint) (*Profile, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{User: u, Detections: []DetectionSummary{}}
	if s.detections == nil {
		return profile, nil
	}

	recent, err := s.detections.RecentByUser(ctx, userID, recentDetectionLimit)
	if err != nil {
		return nil, err
	}
	for _, d := range recent {
		profile.Detections = append(profile.Detections, DetectionSummary{
			ID:         d.ID,
			PlantType:  d.PlantType,
			Prediction: d.Prediction,
			DiseaseKey: d.DiseaseKey,
			Confidence: d.Confidence,
			CreatedAt:  d.CreatedAt,
		})
	}
	return profile, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID uint, name string) (*models.User, error) {
	if err := s.users.UpdateName(ctx, userID, strings.TrimSpace(name)); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, userID)
}

func (s *Service) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(current, u.Password)
	if err != nil || !ok {
		return apperror.Validation("Gagal mengubah password", "current password is incorrect")
	}

	digest, err := s.hasher.Hash(next)
	if err != nil {
		return apperror.Internal("Gagal mengubah password", err)
	}
	return s.users.UpdatePassword(ctx, userID, digest)
}

func subjectOf(u *models.User) utils.Subject {
	return utils.Subject{ID: u.ID, Email: u.Email, Role: u.Role}
}

package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahabattani/backend/internal/apperror"
	"github.com/sahabattani/backend/internal/models"
	"github.com/sahabattani/backend/internal/utils"
)

const identityKey = "identity"

const (
	ReasonTokenRequired = "authentication token required"
	ReasonInvalidToken  = "invalid token"
	ReasonTokenExpired  = "token expired"
	ReasonUserNotFound  = "invalid token or user not found"
)

// Identity is the authenticated caller attached to a request.
type Identity struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == models.RoleAdmin
}

type UserLoader interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

type Guard struct {
	tokens *utils.TokenManager
	users  UserLoader
}

func NewGuard(tokens *utils.TokenManager, users UserLoader) *Guard {
	return &Guard{tokens: tokens, users: users}
}

// JWTProtected rejects the request unless it carries a valid access token
// belonging to an active user.
func (g *Guard) JWTProtected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return apperror.Authentication("Akses ditolak", ReasonTokenRequired)
		}

		identity, err := g.authenticate(c.UserContext(), token)
		if err != nil {
			return err
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// OptionalAuth attaches the identity when the token checks out and carries on
// anonymously otherwise.
func (g *Guard) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			if identity, err := g.authenticate(c.UserContext(), token); err == nil {
				c.Locals(identityKey, identity)
			}
		}
		return c.Next()
	}
}

func (g *Guard) authenticate(ctx context.Context, token string) (*Identity, error) {
	claims, err := g.tokens.VerifyAccessToken(token)
	if err != nil {
		if errors.Is(err, utils.ErrExpiredToken) {
			return nil, apperror.Authentication("Akses ditolak", ReasonTokenExpired)
		}
		return nil, apperror.Authentication("Akses ditolak", ReasonInvalidToken)
	}

	user, err := g.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.Authentication("Akses ditolak", ReasonUserNotFound)
		}
		return nil, apperror.Internal("Autentikasi gagal", err)
	}
	if !user.IsActive {
		return nil, apperror.Authentication("Akses ditolak", ReasonUserNotFound)
	}

	return &Identity{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}, nil
}

func bearerToken(c *fiber.Ctx) string {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// CurrentIdentity returns the identity set by JWTProtected or OptionalAuth.
func CurrentIdentity(c *fiber.Ctx) (*Identity, bool) {
	identity, ok := c.Locals(identityKey).(*Identity)
	return identity, ok && identity != nil
}

// MustIdentity is for handlers mounted behind JWTProtected.
func MustIdentity(c *fiber.Ctx) (*Identity, error) {
	identity, ok := CurrentIdentity(c)
	if !ok {
		return nil, apperror.Authentication("Akses ditolak", ReasonTokenRequired)
	}
	return identity, nil
}

package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahabattani/backend/internal/apperror"
	"github.com/sahabattani/backend/internal/middleware"
	"github.com/sahabattani/backend/internal/models"
	"github.com/sahabattani/backend/internal/response"
	"github.com/sahabattani/backend/internal/utils"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperror.Validation("Format request tidak valid", err.Error())
	}
	return nil
}

func sessionPayload(s *Session) fiber.Map {
	return fiber.Map{
		"user":         s.User,
		"token":        s.Tokens.AccessToken,
		"refreshToken": s.Tokens.RefreshToken,
	}
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &body); err != nil {
		return err
	}

	body.Email = models.NormalizeEmail(body.Email)
	if problems := utils.Collect(
		utils.ValidateName(body.Name),
		utils.ValidateEmail(body.Email),
		utils.ValidatePassword("password", body.Password),
	); len(problems) > 0 {
		return apperror.Validation("Validasi gagal", problems...)
	}

	session, err := h.service.Register(c.UserContext(), body.Name, body.Email, body.Password)
	if err != nil {
		return err
	}
	return response.Created(c, sessionPayload(session), "Registrasi berhasil")
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &body); err != nil {
		return err
	}

	body.Email = models.NormalizeEmail(body.Email)
	var problems []string
	if body.Email == "" {
		problems = append(problems, "email is required")
	}
	if body.Password == "" {
		problems = append(problems, "password is required")
	}
	if len(problems) > 0 {
		return apperror.Validation("Validasi gagal", problems...)
	}

	session, err := h.service.Login(c.UserContext(), body.Email, body.Password)
	if err != nil {
		return err
	}
	return response.Success(c, sessionPayload(session), "Login berhasil")
}

func (h *Handler) RefreshToken(c *fiber.Ctx) error {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := parseBody(c, &body); err != nil {
		return err
	}
	if strings.TrimSpace(body.RefreshToken) == "" {
		return apperror.Authentication("Refresh token gagal", "refresh token required")
	}

	pair, err := h.service.Refresh(c.UserContext(), body.RefreshToken)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.Map{
		"token":        pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "Token berhasil diperbarui")
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	identity, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}
	if err := h.service.Logout(c.UserContext(), identity.ID); err != nil {
		return err
	}
	return response.Success(c, nil, "Logout berhasil")
}

func (h *Handler) GetProfile(c *fiber.Ctx) error {
	identity, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	profile, err := h.service.Profile(c.UserContext(), identity.ID)
	if err != nil {
		return err
	}
	return response.Success(c, profile, "Profil berhasil diambil")
}

func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	identity, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	var body struct {
		Name string `json:"name"`
	}
	if err := parseBody(c, &body); err != nil {
		return err
	}
	if msg := utils.ValidateName(body.Name); msg != "" {
		return apperror.Validation("Validasi gagal", msg)
	}

	u, err := h.service.UpdateProfile(c.UserContext(), identity.ID, body.Name)
	if err != nil {
		return err
	}
	return response.Success(c, u, "Profil berhasil diperbarui")
}

func (h *Handler) ChangePassword(c *fiber.Ctx) error {
	identity, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	var body struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := parseBody(c, &body); err != nil {
		return err
	}

	problems := utils.Collect(utils.ValidatePassword("newPassword", body.NewPassword))
	if body.CurrentPassword == "" {
		problems = append([]string{"currentPassword is required"}, problems...)
	}
	if len(problems) > 0 {
		return apperror.Validation("Validasi gagal", problems...)
	}

	if err := h.service.ChangePassword(c.UserContext(), identity.ID, body.CurrentPassword, body.NewPassword); err != nil {
		return err
	}
	return response.Success(c, nil, "Password berhasil diubah")
}

package user

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
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

func userID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, apperror.Validation("ID pengguna tidak valid", "id must be a positive integer")
	}
	return uint(id), nil
}

func (h *Handler) List(c *fiber.Ctx) error {
	page, limit := utils.PageParams(c, 10, 100)

	users, total, err := h.repo.List(c.UserContext(), strings.TrimSpace(c.Query("q")), page, limit)
	if err != nil {
		return err
	}
	return response.Paginated(c, users, page, limit, total, "Daftar pengguna berhasil diambil")
}

func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return err
	}

	u, err := h.repo.FindByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return response.Success(c, u, "Pengguna berhasil diambil")
}

func (h *Handler) Update(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return err
	}

	var body struct {
		Name     *string `json:"name"`
		Role     *string `json:"role"`
		IsActive *bool   `json:"isActive"`
	}
	if err := c.BodyParser(&body); err != nil {
		return apperror.Validation("Format request tidak valid", err.Error())
	}

	var problems []string
	if body.Name != nil {
		trimmed := strings.TrimSpace(*body.Name)
		body.Name = &trimmed
		problems = utils.Collect(utils.ValidateName(trimmed))
	}
	if body.Role != nil && *body.Role != models.RoleUser && *body.Role != models.RoleAdmin {
		problems = append(problems, "role must be one of user, admin")
	}
	if len(problems) > 0 {
		return apperror.Validation("Validasi gagal", problems...)
	}

	identity, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}
	if identity.ID == id && ((body.Role != nil && *body.Role != models.RoleAdmin) || (body.IsActive != nil && !*body.IsActive)) {
		return apperror.Validation("Tidak dapat menurunkan akses akun sendiri", "cannot demote or deactivate your own account")
	}

	if err := h.repo.AdminUpdate(c.UserContext(), id, AdminUpdate{
		Name:     body.Name,
		Role:     body.Role,
		IsActive: body.IsActive,
	}); err != nil {
		return err
	}

	u, err := h.repo.FindByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return response.Success(c, u, "Pengguna berhasil diperbarui")
}

// Delete deactivates the account. Users are never removed.
func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return err
	}

	identity, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}
	if identity.ID == id {
		return apperror.Validation("Tidak dapat menonaktifkan akun sendiri", "cannot deactivate your own account")
	}

	inactive := false
	if err := h.repo.AdminUpdate(c.UserContext(), id, AdminUpdate{IsActive: &inactive}); err != nil {
		return err
	}
	return response.Success(c, nil, "Pengguna berhasil dinonaktifkan")
}

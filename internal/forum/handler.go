package forum

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahabattani/backend/internal/apperror"
	"github.com/sahabattani/backend/internal/middleware"
	"github.com/sahabattani/backend/internal/response"
	"github.com/sahabattani/backend/internal/utils"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func postID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, apperror.Validation("ID post tidak valid", "id must be a positive integer")
	}
	return uint(id), nil
}

func (h *Handler) List(c *fiber.Ctx) error {
	page, limit := utils.PageParams(c, 10, 50)
	posts, total, err := h.service.List(c.UserContext(), c.Query("q"), page, limit)
	if err != nil {
		return err
	}
	return response.Paginated(c, posts, page, limit, total, "Data posts berhasil diambil")
}

func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	post, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return response.Success(c, post, "Data post berhasil diambil")
}

func (h *Handler) Create(c *fiber.Ctx) error {
	identity, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	var in PostInput
	if err := c.BodyParser(&in); err != nil {
		return apperror.Validation("Format request tidak valid", err.Error())
	}

	post, err := h.service.Create(c.UserContext(), identity.ID, in)
	if err != nil {
		return err
	}
	return response.Created(c, post, "Post berhasil dibuat")
}

func (h *Handler) Update(c *fiber.Ctx) error {
	identity, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}
	id, err := postID(c)
	if err != nil {
		return err
	}

	var in PostInput
	if err := c.BodyParser(&in); err != nil {
		return apperror.Validation("Format request tidak valid", err.Error())
	}

	post, err := h.service.Update(c.UserContext(), id, identity.ID, in)
	if err != nil {
		return err
	}
	return response.Success(c, post, "Post berhasil diupdate")
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	identity, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}
	id, err := postID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.UserContext(), id, identity.ID); err != nil {
		return err
	}
	return response.Success(c, nil, "Post berhasil dihapus")
}

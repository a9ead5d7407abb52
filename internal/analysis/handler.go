package analysis

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahabattani/backend/internal/apperror"
	"github.com/sahabattani/backend/internal/middleware"
	"github.com/sahabattani/backend/internal/response"
	"github.com/sahabattani/backend/internal/utils"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, apperror.Validation("ID tidak valid", name+" must be a positive integer")
	}
	return uint(id), nil
}

func (h *Handler) Create(c *fiber.Ctx) error {
	identity, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	var in CreateInput
	if err := c.BodyParser(&in); err != nil {
		return apperror.Validation("Format request tidak valid", err.Error())
	}

	d, err := h.service.Create(c.UserContext(), identity.ID, in)
	if err != nil {
		return err
	}
	return response.Created(c, d, "Hasil analisis berhasil disimpan")
}

// ListByUser serves the history page, which pages by limit and offset.
func (h *Handler) ListByUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return err
	}

	limit := c.QueryInt("limit", defaultLimit)
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	analyses, total, err := h.service.ListByUser(c.UserContext(), userID, limit, offset)
	if err != nil {
		return err
	}

	pagination := response.CalculateOffsetPagination(offset, limit, total)
	return response.SuccessWithMeta(c, fiber.Map{
		"analyses":   analyses,
		"totalCount": total,
		"hasMore":    int64(offset+len(analyses)) < total,
	}, &response.Meta{Pagination: &pagination}, "Riwayat analisis berhasil diambil")
}

func (h *Handler) ListAll(c *fiber.Ctx) error {
	page, limit := utils.PageParams(c, defaultLimit, maxLimit)
	filter := Filter{
		PlantType:  c.Query("plantType"),
		DiseaseKey: c.Query("diseaseKey"),
	}

	analyses, total, err := h.service.ListAll(c.UserContext(), filter, page, limit)
	if err != nil {
		return err
	}
	return response.Paginated(c, analyses, page, limit, total, "Data analisis berhasil diambil")
}

func (h *Handler) ListPublic(c *fiber.Ctx) error {
	page, limit := utils.PageParams(c, defaultLimit, maxLimit)

	analyses, total, err := h.service.ListPublic(c.UserContext(), page, limit)
	if err != nil {
		return err
	}
	return response.Paginated(c, analyses, page, limit, total, "Analisis publik berhasil diambil")
}

func (h *Handler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return response.Success(c, stats, "Statistik analisis berhasil diambil")
}

func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	identity, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	d, err := h.service.GetFor(c.UserContext(), id, identity)
	if err != nil {
		return err
	}
	return response.Success(c, d, "Analisis berhasil diambil")
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	identity, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.UserContext(), id, identity); err != nil {
		return err
	}
	return response.Success(c, nil, "Analisis berhasil dihapus")
}

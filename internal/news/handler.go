package news

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/sahabattani/backend/internal/response"
)

type Source interface {
	Everything(ctx context.Context, params url.Values) (json.RawMessage, error)
	Sources(ctx context.Context, params url.Values) (json.RawMessage, error)
}

type Handler struct {
	source Source
}

func NewHandler(source Source) *Handler {
	return &Handler{source: source}
}

var everythingParams = []string{"page", "pageSize", "sortBy", "domains", "sources", "from", "to"}

func (h *Handler) Everything(c *fiber.Ctx) error {
	params := url.Values{}
	params.Set("q", c.Query("q", "pertanian"))
	params.Set("language", c.Query("language", "id"))
	for _, name := range everythingParams {
		if v := c.Query(name); v != "" {
			params.Set(name, v)
		}
	}

	body, err := h.source.Everything(c.UserContext(), params)
	if err != nil {
		return err
	}
	return response.Success(c, body, "Berita berhasil diambil")
}

func (h *Handler) Sources(c *fiber.Ctx) error {
	params := url.Values{}
	params.Set("language", c.Query("language", "id"))
	for _, name := range []string{"category", "country"} {
		if v := c.Query(name); v != "" {
			params.Set(name, v)
		}
	}

	body, err := h.source.Sources(c.UserContext(), params)
	if err != nil {
		return err
	}
	return response.Success(c, body, "Sumber berita berhasil diambil")
}

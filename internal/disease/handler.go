package disease

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahabattani/backend/internal/apperror"
	"github.com/sahabattani/backend/internal/response"
)

type Handler struct {
	kb *KnowledgeBase
}

func NewHandler(kb *KnowledgeBase) *Handler {
	return &Handler{kb: kb}
}

type View struct {
	Entry
	SeverityStyle string `json:"severityStyle"`
}

type Resolution struct {
	Tag  string `json:"tag"`
	Key  string `json:"key"`
	Info View   `json:"info"`
}

func view(e Entry) View {
	return View{Entry: e, SeverityStyle: SeverityStyle(e.Severity)}
}

func (h *Handler) List(c *fiber.Ctx) error {
	entries := h.kb.Entries()
	views := make([]View, 0, len(entries))
	for _, e := range entries {
		views = append(views, view(e))
	}
	return response.Success(c, views, "Data penyakit berhasil diambil")
}

func (h *Handler) Resolve(c *fiber.Ctx) error {
	tag := c.Query("tag")
	if tag == "" {
		return apperror.Validation("Parameter tag wajib diisi", "tag is required")
	}
	e := h.kb.Describe(tag)
	return response.Success(c, Resolution{Tag: tag, Key: e.Key, Info: view(e)}, "Penyakit berhasil diidentifikasi")
}

func (h *Handler) Get(c *fiber.Ctx) error {
	e, ok := h.kb.Lookup(c.Params("key"))
	if !ok {
		return apperror.NotFound("Data penyakit tidak ditemukan", "unknown disease key")
	}
	return response.Success(c, view(e), "Data penyakit berhasil diambil")
}

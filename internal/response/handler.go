package response

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

var now = time.Now

type Envelope struct {
	Status    string      `json:"status"`
	Message   string      `json:"message"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
	Meta      *Meta       `json:"meta,omitempty"`
	Errors    []string    `json:"errors,omitempty"`
	Code      string      `json:"code,omitempty"`
}

type Meta struct {
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
	NextPage     *int  `json:"nextPage"`
	PrevPage     *int  `json:"prevPage"`
}

func timestamp() string {
	return now().UTC().Format(timestampLayout)
}

func NewSuccess(message string, data interface{}, meta *Meta) Envelope {
	return Envelope{
		Status:    StatusSuccess,
		Message:   message,
		Timestamp: timestamp(),
		Data:      data,
		Meta:      meta,
	}
}

func NewError(message string, errors []string, code string) Envelope {
	return Envelope{
		Status:    StatusError,
		Message:   message,
		Timestamp: timestamp(),
		Errors:    errors,
		Code:      code,
	}
}

func NewPaginated(data interface{}, page, limit int, total int64, message string) Envelope {
	if message == "" {
		message = "Data berhasil diambil"
	}
	p := CalculatePagination(page, limit, total)
	return NewSuccess(message, data, &Meta{Pagination: &p})
}

// CalculatePagination derives page links from 1-based page numbers.
func CalculatePagination(page, limit int, total int64) Pagination {
	if page < 1 {
		page = 1
	}

	totalPages := 0
	if limit > 0 {
		totalPages = int(total / int64(limit))
		if total%int64(limit) > 0 {
			totalPages++
		}
	}

	p := Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: limit,
		HasNextPage:  page < totalPages,
		HasPrevPage:  page > 1,
	}
	if p.HasNextPage {
		next := page + 1
		p.NextPage = &next
	}
	if p.HasPrevPage {
		prev := page - 1
		p.PrevPage = &prev
	}
	return p
}

// CalculateOffsetPagination describes a limit/offset window. Pages are counted
// outwards from the window, so an offset that is not a multiple of limit still
// reports the items in front of it as a previous page.
func CalculateOffsetPagination(offset, limit int, total int64) Pagination {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		return CalculatePagination(1, limit, total)
	}

	before := (offset + limit - 1) / limit
	p := CalculatePagination(before+1, limit, total)
	if remaining := total - int64(offset); remaining > 0 {
		p.TotalPages = before + int((remaining+int64(limit)-1)/int64(limit))
	}

	p.HasNextPage = int64(offset+limit) < total
	p.NextPage = nil
	if p.HasNextPage {
		next := p.CurrentPage + 1
		p.NextPage = &next
	}
	return p
}

func Success(c *fiber.Ctx, data interface{}, message string) error {
	return c.JSON(NewSuccess(message, data, nil))
}

func SuccessWithMeta(c *fiber.Ctx, data interface{}, meta *Meta, message string) error {
	return c.JSON(NewSuccess(message, data, meta))
}

func Paginated(c *fiber.Ctx, data interface{}, page, limit int, total int64, message string) error {
	return c.JSON(NewPaginated(data, page, limit, total, message))
}

func Created(c *fiber.Ctx, data interface{}, message string) error {
	return c.Status(fiber.StatusCreated).JSON(NewSuccess(message, data, nil))
}

func Error(c *fiber.Ctx, statusCode int, errorCode string, message string, errors []string) error {
	return c.Status(statusCode).JSON(NewError(message, errors, errorCode))
}

func BadRequest(c *fiber.Ctx, message string, errors ...string) error {
	return Error(c, fiber.StatusBadRequest, "BAD_REQUEST", message, errors)
}

func Unauthorized(c *fiber.Ctx, message string, errors ...string) error {
	return Error(c, fiber.StatusUnauthorized, "UNAUTHORIZED", message, errors)
}

func Forbidden(c *fiber.Ctx, message string, errors ...string) error {
	return Error(c, fiber.StatusForbidden, "FORBIDDEN", message, errors)
}

func NotFound(c *fiber.Ctx, resource string) error {
	return Error(c, fiber.StatusNotFound, "NOT_FOUND", resource+" tidak ditemukan", nil)
}

func Conflict(c *fiber.Ctx, message string, errors ...string) error {
	return Error(c, fiber.StatusConflict, "CONFLICT", message, errors)
}

func ValidationError(c *fiber.Ctx, errors ...string) error {
	return Error(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "Validasi gagal", errors)
}

func InternalError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", message, nil)
}

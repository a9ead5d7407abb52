package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sahabattani/backend/internal/apperror"
)

// CanAccess allows admins and the owner of the resource.
func CanAccess(identity *Identity, ownerID uint) bool {
	if identity == nil {
		return false
	}
	return identity.IsAdmin() || identity.ID == ownerID
}

// OwnerOrAdmin compares the route parameter param against the caller.
func OwnerOrAdmin(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := MustIdentity(c)
		if err != nil {
			return err
		}

		ownerID, err := strconv.ParseUint(c.Params(param), 10, 64)
		if err != nil {
			return apperror.Validation("Parameter tidak valid", param+" must be a positive integer")
		}

		if !CanAccess(identity, uint(ownerID)) {
			return apperror.Authorization("Akses ditolak", "you can only access your own resources")
		}
		return c.Next()
	}
}

func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := MustIdentity(c)
		if err != nil {
			return err
		}
		if !identity.IsAdmin() {
			return apperror.Authorization("Akses ditolak", "admin privileges required")
		}
		return c.Next()
	}
}

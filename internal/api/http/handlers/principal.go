package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/invoice-service/internal/auth"
	"github.com/spec-kit/invoice-service/internal/domain"
	apperrors "github.com/spec-kit/invoice-service/pkg/util/errorutil"
)

func callerIdentity(c *fiber.Ctx) (domain.Identity, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return domain.Identity{}, apperrors.NewUnauthorized("user required")
	}
	return principal.Identity(), nil
}

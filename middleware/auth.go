package middleware

import (
	"context"
	"errors"

	"parcel-delivery/apperror"
	"parcel-delivery/constants"
	"parcel-delivery/httpServices/identity"
	"parcel-delivery/logger"
	"parcel-delivery/types"
	"parcel-delivery/utils"

	"github.com/gofiber/fiber/v2"
)

// TokenVerifier validates a bearer token with the identity provider.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*identity.Claims, error)
}

// RoleLookup resolves the stored role of a user.
type RoleLookup interface {
	GetRoleByEmail(ctx context.Context, email string) (string, error)
}

// Auth builds the access gates used by the routes. Rejections are written
// to the audit log like any other response.
type Auth struct {
	Verifier TokenVerifier
	Roles    RoleLookup
	Logger   *logger.AsyncLogger
}

func NewAuth(verifier TokenVerifier, roles RoleLookup, asyncLogger *logger.AsyncLogger) *Auth {
	return &Auth{Verifier: verifier, Roles: roles, Logger: asyncLogger}
}

func (a *Auth) reject(c *fiber.Ctx, status int, message string) error {
	result := c.Status(status).JSON(types.ApiResponse{
		Message: message,
		Status:  status,
		Data:    nil,
	})
	if a.Logger != nil {
		a.Logger.Log(utils.CreateSanitizedLogEntry(c))
	}
	return result
}

// RequireAuthenticated accepts requests carrying a valid bearer token and
// stores the verified claims and email in the request locals.
func (a *Auth) RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := utils.BearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return a.reject(c, fiber.StatusUnauthorized, "unauthorized access")
		}

		claims, err := a.Verifier.Verify(c.UserContext(), token)
		if err != nil {
			logger.Warning("Rejected bearer token: " + err.Error())
			return a.reject(c, fiber.StatusForbidden, "forbidden access")
		}

		c.Locals(constants.LocalsClaims, claims)
		c.Locals(constants.LocalsEmail, claims.Email)
		return c.Next()
	}
}

// RequireAdmin must run after RequireAuthenticated. It lets the request
// through only when the caller's stored role is admin.
func (a *Auth) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		email := Email(c)
		if email == "" {
			return a.reject(c, fiber.StatusUnauthorized, "unauthorized access")
		}

		role, err := a.Roles.GetRoleByEmail(c.UserContext(), email)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return a.reject(c, fiber.StatusNotFound, "user not found")
			}
			logger.Error("Failed to resolve role for "+email, err)
			return a.reject(c, apperror.HTTPStatus(err), err.Error())
		}
		if role != constants.RoleAdmin {
			return a.reject(c, fiber.StatusForbidden, "forbidden access")
		}
		return c.Next()
	}
}

// Email returns the verified email stored by RequireAuthenticated.
func Email(c *fiber.Ctx) string {
	email, _ := c.Locals(constants.LocalsEmail).(string)
	return email
}

package user

import (
	"parcel-delivery/apperror"
	"parcel-delivery/constants"
	"parcel-delivery/logger"
	userService "parcel-delivery/services/user"
	"parcel-delivery/types"
	userTypes "parcel-delivery/types/user"
	"parcel-delivery/utils"

	"github.com/gofiber/fiber/v2"
)

// UserController handles user directory requests
type UserController struct {
	Service *userService.Service
	Logger  *logger.AsyncLogger
}

// NewUserController creates a new user controller
func NewUserController(service *userService.Service, asyncLogger *logger.AsyncLogger) *UserController {
	return &UserController{
		Service: service,
		Logger:  asyncLogger,
	}
}

// Helper function to log API requests
func (uc *UserController) logAPIRequest(c *fiber.Ctx) {
	if uc.Logger == nil {
		return
	}
	logEntry := utils.CreateSanitizedLogEntry(c)
	uc.Logger.Log(logEntry)
}

// Helper function to send response and log in one call
func (uc *UserController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	uc.logAPIRequest(c)
	return result
}

func (uc *UserController) sendError(c *fiber.Ctx, message string, err error) error {
	status := apperror.HTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		logger.Error(message, err)
	}
	return uc.sendResponseWithLog(c, status, types.ApiResponse{
		Message: err.Error(),
		Status:  status,
		Data:    nil,
	})
}

// Login records a sign-in, creating the account on first login
func (uc *UserController) Login(c *fiber.Ctx) error {
	var req userTypes.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return uc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Message: "Invalid request body",
			Status:  fiber.StatusBadRequest,
			Data:    nil,
		})
	}

	result, err := uc.Service.UpsertLogin(c.UserContext(), req)
	if err != nil {
		return uc.sendError(c, "Failed to record login", err)
	}

	status := fiber.StatusOK
	message := "User already exists"
	if result.Inserted {
		status = fiber.StatusCreated
		message = "User created successfully"
	}
	return uc.sendResponseWithLog(c, status, types.ApiResponse{
		Message: message,
		Status:  status,
		Data:    result,
	})
}

// GetRoleByEmail returns the stored role for an email
func (uc *UserController) GetRoleByEmail(c *fiber.Ctx) error {
	email := c.Params("email")
	role, err := uc.Service.GetRoleByEmail(c.UserContext(), email)
	if err != nil {
		return uc.sendError(c, "Failed to get role", err)
	}
	return uc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Message: "Role fetched successfully",
		Status:  fiber.StatusOK,
		Data:    userTypes.RoleResponse{Role: role},
	})
}

// Search finds users whose email contains the keyword
func (uc *UserController) Search(c *fiber.Ctx) error {
	users, err := uc.Service.SearchByEmailSubstring(c.UserContext(), c.Params("keyword"))
	if err != nil {
		return uc.sendError(c, "Failed to search users", err)
	}
	return uc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Message: "Users fetched successfully",
		Status:  fiber.StatusOK,
		Data:    users,
	})
}

// ListByRole lists users holding a role, newest first
func (uc *UserController) ListByRole(c *fiber.Ctx) error {
	users, err := uc.Service.ListByRole(c.UserContext(), c.Params("role"))
	if err != nil {
		return uc.sendError(c, "Failed to list users", err)
	}
	return uc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Message: "Users fetched successfully",
		Status:  fiber.StatusOK,
		Data:    users,
	})
}

// MakeAdmin grants the admin role
func (uc *UserController) MakeAdmin(c *fiber.Ctx) error {
	return uc.setRole(c, constants.RoleAdmin, "Admin role granted")
}

// RemoveAdmin revokes the admin role by resetting the user to the default role
func (uc *UserController) RemoveAdmin(c *fiber.Ctx) error {
	return uc.setRole(c, constants.RoleUser, "Admin role revoked")
}

func (uc *UserController) setRole(c *fiber.Ctx, role, message string) error {
	email := c.Params("email")
	result, err := uc.Service.SetRole(c.UserContext(), email, role)
	if err != nil {
		return uc.sendError(c, "Failed to update role", err)
	}
	logger.Info(message + " for " + email)
	return uc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Message: message,
		Status:  fiber.StatusOK,
		Data:    result,
	})
}

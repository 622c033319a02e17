package parcel

import (
	"errors"

	"parcel-delivery/apperror"
	"parcel-delivery/constants"
	"parcel-delivery/logger"
	"parcel-delivery/middleware"
	parcelService "parcel-delivery/services/parcel"
	"parcel-delivery/types"
	parcelTypes "parcel-delivery/types/parcel"
	"parcel-delivery/utils"

	"github.com/gofiber/fiber/v2"
)

// ParcelController handles parcel registry requests
type ParcelController struct {
	Service *parcelService.Service
	Roles   middleware.RoleLookup
	Logger  *logger.AsyncLogger
}

// NewParcelController creates a new parcel controller
func NewParcelController(service *parcelService.Service, roles middleware.RoleLookup, asyncLogger *logger.AsyncLogger) *ParcelController {
	return &ParcelController{
		Service: service,
		Roles:   roles,
		Logger:  asyncLogger,
	}
}

// Helper function to log API requests
func (pc *ParcelController) logAPIRequest(c *fiber.Ctx) {
	if pc.Logger == nil {
		return
	}
	logEntry := utils.CreateSanitizedLogEntry(c)
	pc.Logger.Log(logEntry)
}

// Helper function to send response and log in one call
func (pc *ParcelController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	pc.logAPIRequest(c)
	return result
}

func (pc *ParcelController) sendError(c *fiber.Ctx, message string, err error) error {
	status := apperror.HTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		logger.Error(message, err)
	}
	return pc.sendResponseWithLog(c, status, types.ApiResponse{
		Message: err.Error(),
		Status:  status,
		Data:    nil,
	})
}

// Index lists parcels matching the query filters, newest first
func (pc *ParcelController) Index(c *fiber.Ctx) error {
	var filter parcelTypes.ListFilter
	if err := c.QueryParser(&filter); err != nil {
		return pc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Message: "Invalid query parameters",
			Status:  fiber.StatusBadRequest,
			Data:    nil,
		})
	}

	parcels, err := pc.Service.List(c.UserContext(), filter)
	if err != nil {
		return pc.sendError(c, "Failed to list parcels", err)
	}
	return pc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Message: "Parcels fetched successfully",
		Status:  fiber.StatusOK,
		Data:    parcels,
	})
}

// Show returns one parcel
func (pc *ParcelController) Show(c *fiber.Ctx) error {
	p, err := pc.Service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return pc.sendError(c, "Failed to get parcel", err)
	}
	return pc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Message: "Parcel fetched successfully",
		Status:  fiber.StatusOK,
		Data:    p,
	})
}

// Store creates a parcel owned by the caller unless created_by is given
func (pc *ParcelController) Store(c *fiber.Ctx) error {
	req, err := parcelTypes.ParseCreateRequest(c.Body())
	if err != nil {
		logger.Error("Failed to parse request body", err)
		return pc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Message: "Invalid request body",
			Status:  fiber.StatusBadRequest,
			Data:    nil,
		})
	}

	result, err := pc.Service.Create(c.UserContext(), req, middleware.Email(c))
	if err != nil {
		return pc.sendError(c, "Failed to create parcel", err)
	}
	return pc.sendResponseWithLog(c, fiber.StatusCreated, types.ApiResponse{
		Message: "Parcel created successfully",
		Status:  fiber.StatusCreated,
		Data:    result,
	})
}

// Destroy removes a parcel; its tracking and payment history stay
func (pc *ParcelController) Destroy(c *fiber.Ctx) error {
	deleted, err := pc.Service.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return pc.sendError(c, "Failed to delete parcel", err)
	}
	return pc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Message: "Parcel deleted successfully",
		Status:  fiber.StatusOK,
		Data:    fiber.Map{"deletedCount": deleted},
	})
}

// AssignRider hands a paid parcel to an approved rider
func (pc *ParcelController) AssignRider(c *fiber.Ctx) error {
	var req parcelTypes.AssignRiderRequest
	if err := c.BodyParser(&req); err != nil {
		return pc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Message: "Invalid request body",
			Status:  fiber.StatusBadRequest,
			Data:    nil,
		})
	}

	p, err := pc.Service.AssignRider(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return pc.sendError(c, "Failed to assign rider", err)
	}
	return pc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Message: "Rider assigned successfully",
		Status:  fiber.StatusOK,
		Data:    p,
	})
}

// UpdateDeliveryStatus lets the assigned rider, or an admin, move the parcel along
func (pc *ParcelController) UpdateDeliveryStatus(c *fiber.Ctx) error {
	var req parcelTypes.DeliveryStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return pc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Message: "Invalid request body",
			Status:  fiber.StatusBadRequest,
			Data:    nil,
		})
	}

	email := middleware.Email(c)
	role, err := pc.Roles.GetRoleByEmail(c.UserContext(), email)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return pc.sendError(c, "Failed to resolve caller role", err)
	}

	p, err := pc.Service.UpdateDeliveryStatus(c.UserContext(), c.Params("id"), req, email, role == constants.RoleAdmin)
	if err != nil {
		return pc.sendError(c, "Failed to update delivery status", err)
	}
	return pc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Message: "Delivery status updated",
		Status:  fiber.StatusOK,
		Data:    p,
	})
}

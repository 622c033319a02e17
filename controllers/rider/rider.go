package rider

import (
	"parcel-delivery/apperror"
	"parcel-delivery/logger"
	riderService "parcel-delivery/services/rider"
	"parcel-delivery/types"
	riderTypes "parcel-delivery/types/rider"
	"parcel-delivery/utils"

	"github.com/gofiber/fiber/v2"
)

// RiderController handles rider applications and their review
type RiderController struct {
	Service *riderService.Service
	Logger  *logger.AsyncLogger
}

// NewRiderController creates a new rider controller
func NewRiderController(service *riderService.Service, asyncLogger *logger.AsyncLogger) *RiderController {
	return &RiderController{
		Service: service,
		Logger:  asyncLogger,
	}
}

// Helper function to log API requests
func (rc *RiderController) logAPIRequest(c *fiber.Ctx) {
	if rc.Logger == nil {
		return
	}
	logEntry := utils.CreateSanitizedLogEntry(c)
	rc.Logger.Log(logEntry)
}

// Helper function to send response and log in one call
func (rc *RiderController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	rc.logAPIRequest(c)
	return result
}

func (rc *RiderController) sendError(c *fiber.Ctx, message string, err error) error {
	status := apperror.HTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		logger.Error(message, err)
	}
	return rc.sendResponseWithLog(c, status, types.ApiResponse{
		Message: err.Error(),
		Status:  status,
		Data:    nil,
	})
}

func (rc *RiderController) ok(c *fiber.Ctx, status int, message string, data interface{}) error {
	return rc.sendResponseWithLog(c, status, types.ApiResponse{
		Message: message,
		Status:  status,
		Data:    data,
	})
}

// Apply submits a rider application
func (rc *RiderController) Apply(c *fiber.Ctx) error {
	var req riderTypes.ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Message: "Invalid request body",
			Status:  fiber.StatusBadRequest,
			Data:    nil,
		})
	}

	result, err := rc.Service.Apply(c.UserContext(), req)
	if err != nil {
		return rc.sendError(c, "Failed to submit rider application", err)
	}
	return rc.ok(c, fiber.StatusCreated, "Rider application submitted", result)
}

// Pending lists applications awaiting review
func (rc *RiderController) Pending(c *fiber.Ctx) error {
	riders, err := rc.Service.ListPending(c.UserContext())
	if err != nil {
		return rc.sendError(c, "Failed to list pending riders", err)
	}
	return rc.ok(c, fiber.StatusOK, "Pending riders fetched successfully", riders)
}

// Active lists approved riders
func (rc *RiderController) Active(c *fiber.Ctx) error {
	riders, err := rc.Service.ListActive(c.UserContext())
	if err != nil {
		return rc.sendError(c, "Failed to list active riders", err)
	}
	return rc.ok(c, fiber.StatusOK, "Active riders fetched successfully", riders)
}

// Approve approves an application and promotes the applicant
func (rc *RiderController) Approve(c *fiber.Ctx) error {
	result, err := rc.Service.Approve(c.UserContext(), c.Params("id"))
	if err != nil {
		return rc.sendError(c, "Failed to approve rider", err)
	}
	logger.Success("Rider " + c.Params("id") + " approved")
	return rc.ok(c, fiber.StatusOK, "Rider approved", result)
}

// Deactivate marks a rider inactive
func (rc *RiderController) Deactivate(c *fiber.Ctx) error {
	result, err := rc.Service.Deactivate(c.UserContext(), c.Params("id"))
	if err != nil {
		return rc.sendError(c, "Failed to deactivate rider", err)
	}
	return rc.ok(c, fiber.StatusOK, "Rider deactivated", result)
}

// Cancel removes an application
func (rc *RiderController) Cancel(c *fiber.Ctx) error {
	result, err := rc.Service.Cancel(c.UserContext(), c.Params("id"))
	if err != nil {
		return rc.sendError(c, "Failed to cancel rider application", err)
	}
	return rc.ok(c, fiber.StatusOK, "Rider application cancelled", result)
}

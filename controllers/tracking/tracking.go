package tracking

import (
	"parcel-delivery/apperror"
	"parcel-delivery/logger"
	trackingService "parcel-delivery/services/tracking"
	"parcel-delivery/types"
	trackingTypes "parcel-delivery/types/tracking"
	"parcel-delivery/utils"

	"github.com/gofiber/fiber/v2"
)

// TrackingController handles tracking events
type TrackingController struct {
	Service *trackingService.Service
	Logger  *logger.AsyncLogger
}

// NewTrackingController creates a new tracking controller
func NewTrackingController(service *trackingService.Service, asyncLogger *logger.AsyncLogger) *TrackingController {
	return &TrackingController{
		Service: service,
		Logger:  asyncLogger,
	}
}

// Helper function to send response and log in one call
func (tc *TrackingController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	if tc.Logger != nil {
		tc.Logger.Log(utils.CreateSanitizedLogEntry(c))
	}
	return result
}

func (tc *TrackingController) sendError(c *fiber.Ctx, message string, err error) error {
	status := apperror.HTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		logger.Error(message, err)
	}
	return tc.sendResponseWithLog(c, status, types.ApiResponse{
		Message: err.Error(),
		Status:  status,
		Data:    nil,
	})
}

// Store appends a tracking event
func (tc *TrackingController) Store(c *fiber.Ctx) error {
	var req trackingTypes.RecordRequest
	if err := c.BodyParser(&req); err != nil {
		return tc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Message: "Invalid request body",
			Status:  fiber.StatusBadRequest,
			Data:    nil,
		})
	}

	id, err := tc.Service.Record(c.UserContext(), req)
	if err != nil {
		return tc.sendError(c, "Failed to record tracking event", err)
	}
	return tc.sendResponseWithLog(c, fiber.StatusCreated, types.ApiResponse{
		Message: "Tracking event recorded",
		Status:  fiber.StatusCreated,
		Data:    fiber.Map{"insertedId": id},
	})
}

// Show returns the history of a tracking id, oldest first
func (tc *TrackingController) Show(c *fiber.Ctx) error {
	events, err := tc.Service.ListByTrackingID(c.UserContext(), c.Params("trackingId"))
	if err != nil {
		return tc.sendError(c, "Failed to list tracking events", err)
	}
	return tc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Message: "Tracking events fetched successfully",
		Status:  fiber.StatusOK,
		Data:    events,
	})
}

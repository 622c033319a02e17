package payment

import (
	"parcel-delivery/apperror"
	"parcel-delivery/logger"
	"parcel-delivery/middleware"
	paymentService "parcel-delivery/services/payment"
	"parcel-delivery/types"
	paymentTypes "parcel-delivery/types/payment"
	"parcel-delivery/utils"

	"github.com/gofiber/fiber/v2"
)

// PaymentController handles charge intents and payment records
type PaymentController struct {
	Service *paymentService.Service
	Logger  *logger.AsyncLogger
}

// NewPaymentController creates a new payment controller
func NewPaymentController(service *paymentService.Service, asyncLogger *logger.AsyncLogger) *PaymentController {
	return &PaymentController{
		Service: service,
		Logger:  asyncLogger,
	}
}

// Helper function to log API requests
func (pc *PaymentController) logAPIRequest(c *fiber.Ctx) {
	if pc.Logger == nil {
		return
	}
	logEntry := utils.CreateSanitizedLogEntry(c)
	pc.Logger.Log(logEntry)
}

// Helper function to send response and log in one call
func (pc *PaymentController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	pc.logAPIRequest(c)
	return result
}

func (pc *PaymentController) sendError(c *fiber.Ctx, message string, err error) error {
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

func (pc *PaymentController) badBody(c *fiber.Ctx, err error) error {
	logger.Error("Failed to parse request body", err)
	return pc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
		Message: "Invalid request body",
		Status:  fiber.StatusBadRequest,
		Data:    nil,
	})
}

// CreateIntent opens a card charge and returns its client secret
func (pc *PaymentController) CreateIntent(c *fiber.Ctx) error {
	var req paymentTypes.ChargeIntentRequest
	if err := c.BodyParser(&req); err != nil {
		return pc.badBody(c, err)
	}

	result, err := pc.Service.CreateChargeIntent(c.UserContext(), req)
	if err != nil {
		return pc.sendError(c, "Failed to create charge intent", err)
	}
	return pc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Message: "Charge intent created",
		Status:  fiber.StatusOK,
		Data:    result,
	})
}

// Store records a completed payment and marks the parcel paid
func (pc *PaymentController) Store(c *fiber.Ctx) error {
	var req paymentTypes.RecordRequest
	if err := c.BodyParser(&req); err != nil {
		return pc.badBody(c, err)
	}

	result, err := pc.Service.RecordPayment(c.UserContext(), req)
	if err != nil {
		return pc.sendError(c, "Failed to record payment", err)
	}
	logger.Success("Payment recorded for parcel " + req.ParcelID)
	return pc.sendResponseWithLog(c, fiber.StatusCreated, types.ApiResponse{
		Message: "Payment recorded",
		Status:  fiber.StatusCreated,
		Data:    result,
	})
}

// Index lists the caller's own payments
func (pc *PaymentController) Index(c *fiber.Ctx) error {
	payments, err := pc.Service.ListPayments(c.UserContext(), middleware.Email(c), c.Query("email"))
	if err != nil {
		return pc.sendError(c, "Failed to list payments", err)
	}
	return pc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Message: "Payments fetched successfully",
		Status:  fiber.StatusOK,
		Data:    payments,
	})
}

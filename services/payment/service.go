package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"parcel-delivery/apperror"
	"parcel-delivery/constants"
	"parcel-delivery/logger"
	parcelModel "parcel-delivery/models/parcel"
	paymentModel "parcel-delivery/models/payment"
	"parcel-delivery/services/events"
	paymentTypes "parcel-delivery/types/payment"

	"gorm.io/gorm"
)

// ChargeIntentCreator opens a card charge with the payment processor and
// returns the client secret.
type ChargeIntentCreator interface {
	CreateChargeIntent(ctx context.Context, amountInCents int64) (string, error)
}

var errAlreadyPaid = apperror.Conflict("parcel not found or already paid")

// Service settles parcel payments.
type Service struct {
	DB        *gorm.DB
	Processor ChargeIntentCreator
	Publisher events.Publisher
}

// NewPaymentService creates a new payment service
func NewPaymentService(db *gorm.DB, processor ChargeIntentCreator, publisher events.Publisher) *Service {
	return &Service{DB: db, Processor: processor, Publisher: publisher}
}

// CreateChargeIntent asks the processor for a USD card charge.
func (s *Service) CreateChargeIntent(ctx context.Context, req paymentTypes.ChargeIntentRequest) (*paymentTypes.ChargeIntentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.InvalidArgument("%s", err.Error())
	}

	secret, err := s.Processor.CreateChargeIntent(ctx, req.AmountInCents)
	if err != nil {
		logger.Error("Failed to create charge intent", err)
		return nil, apperror.PaymentProcessor("payment processor error", err)
	}
	return &paymentTypes.ChargeIntentResponse{ClientSecret: secret}, nil
}

// RecordPayment marks the parcel paid and stores the payment record. The
// parcel update is conditional on the parcel not being paid yet, so a
// repeated call is a Conflict and never creates a second record.
func (s *Service) RecordPayment(ctx context.Context, req paymentTypes.RecordRequest) (*paymentTypes.RecordResponse, error) {
	req.ParcelID = strings.TrimSpace(req.ParcelID)
	req.TransactionID = strings.TrimSpace(req.TransactionID)
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		return nil, apperror.InvalidArgument("%s", err.Error())
	}

	var record paymentModel.Payment
	parcelMarked := false

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&parcelModel.Parcel{}).
			Where("id = ? AND COALESCE(payment_status, '') <> ?", req.ParcelID, parcelModel.PaymentStatusPaid).
			Updates(map[string]interface{}{
				"status":         parcelModel.StatusPaid,
				"payment_status": parcelModel.PaymentStatusPaid,
				"transaction_id": req.TransactionID,
			})
		if result.Error != nil {
			return apperror.Store("failed to mark parcel paid", result.Error)
		}
		if result.RowsAffected == 0 {
			return errAlreadyPaid
		}
		parcelMarked = true

		var trackingID string
		err := tx.Model(&parcelModel.Parcel{}).
			Select("COALESCE(tracking_id, '')").
			Where("id = ?", req.ParcelID).
			Scan(&trackingID).Error
		if err != nil {
			return apperror.Store("failed to read parcel tracking id", err)
		}

		record = paymentModel.Payment{
			ParcelID:      req.ParcelID,
			TrackingID:    trackingID,
			TransactionID: req.TransactionID,
			Email:         req.Email,
			Amount:        req.Amount,
			PaidAt:        time.Now(),
		}
		if err := tx.Create(&record).Error; err != nil {
			return apperror.Store("failed to save payment record", err)
		}
		return nil
	})
	if err != nil {
		if parcelMarked && !errors.Is(err, apperror.ErrConflict) {
			logger.Error(fmt.Sprintf("Payment settlement failed for parcel %s (transaction %s), rolled back", req.ParcelID, req.TransactionID), err)
		}
		return nil, err
	}

	events.Publish(ctx, s.Publisher, constants.EventParcelPaid, map[string]any{
		"parcel_id":      record.ParcelID,
		"payment_id":     record.ID,
		"tracking_id":    record.TrackingID,
		"transaction_id": record.TransactionID,
		"email":          record.Email,
		"amount":         record.Amount,
	})
	return &paymentTypes.RecordResponse{PaymentID: record.ID}, nil
}

// ListPayments returns queryEmail's payments, newest first. Users only see
// their own history.
func (s *Service) ListPayments(ctx context.Context, requesterEmail, queryEmail string) ([]paymentModel.Payment, error) {
	if requesterEmail == "" || requesterEmail != queryEmail {
		return nil, apperror.Forbidden("forbidden access")
	}

	var payments []paymentModel.Payment
	err := s.DB.WithContext(ctx).
		Where("email = ?", queryEmail).
		Order("paid_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, apperror.Store("failed to list payments", err)
	}
	return payments, nil
}

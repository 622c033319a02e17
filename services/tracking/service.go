package tracking

import (
	"context"
	"strings"
	"time"

	"parcel-delivery/apperror"
	trackingModel "parcel-delivery/models/tracking"
	trackingTypes "parcel-delivery/types/tracking"

	"gorm.io/gorm"
)

// Service is the append-only delivery history.
type Service struct {
	DB *gorm.DB
}

// NewTrackingService creates a new tracking service
func NewTrackingService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// Record validates req and appends it. It returns the new event id.
func (s *Service) Record(ctx context.Context, req trackingTypes.RecordRequest) (string, error) {
	event, err := Append(s.DB.WithContext(ctx), req)
	if err != nil {
		return "", err
	}
	return event.ID, nil
}

// Append validates req and inserts it through tx, so callers can record an
// event inside their own transaction. Nothing is written when validation
// fails.
func Append(tx *gorm.DB, req trackingTypes.RecordRequest) (*trackingModel.Event, error) {
	req.TrackingID = strings.TrimSpace(req.TrackingID)
	req.ParcelID = strings.TrimSpace(req.ParcelID)
	req.Status = strings.TrimSpace(req.Status)
	if err := req.Validate(); err != nil {
		return nil, apperror.InvalidArgument("%s", err.Error())
	}

	location := strings.TrimSpace(req.Location)
	if location == "" {
		location = trackingModel.DefaultLocation
	}

	event := trackingModel.Event{
		TrackingID: req.TrackingID,
		ParcelID:   req.ParcelID,
		Status:     req.Status,
		Location:   location,
		Timestamp:  time.Now(),
	}
	if err := tx.Create(&event).Error; err != nil {
		return nil, apperror.Store("failed to record tracking event", err)
	}
	return &event, nil
}

// ListByTrackingID returns the history of one tracking number, oldest
// first.
func (s *Service) ListByTrackingID(ctx context.Context, trackingID string) ([]trackingModel.Event, error) {
	trackingID = strings.TrimSpace(trackingID)
	if trackingID == "" {
		return nil, apperror.InvalidArgument("trackingId is required")
	}

	var events []trackingModel.Event
	err := s.DB.WithContext(ctx).
		Where("tracking_id = ?", trackingID).
		Order("timestamp ASC").
		Find(&events).Error
	if err != nil {
		return nil, apperror.Store("failed to list tracking events", err)
	}
	return events, nil
}

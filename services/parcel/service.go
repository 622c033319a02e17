package parcel

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"parcel-delivery/apperror"
	"parcel-delivery/constants"
	parcelModel "parcel-delivery/models/parcel"
	riderModel "parcel-delivery/models/rider"
	"parcel-delivery/services/events"
	trackingService "parcel-delivery/services/tracking"
	parcelTypes "parcel-delivery/types/parcel"
	trackingTypes "parcel-delivery/types/tracking"

	"github.com/jinzhu/now"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service is the parcel registry.
type Service struct {
	DB        *gorm.DB
	Publisher events.Publisher
}

// NewParcelService creates a new parcel service
func NewParcelService(db *gorm.DB, publisher events.Publisher) *Service {
	return &Service{DB: db, Publisher: publisher}
}

// List returns parcels matching filter, newest first.
func (s *Service) List(ctx context.Context, filter parcelTypes.ListFilter) ([]parcelModel.Parcel, error) {
	query := s.DB.WithContext(ctx).Model(&parcelModel.Parcel{})

	if filter.Email != "" {
		query = query.Where("created_by = ?", filter.Email)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.From != "" {
		from, err := now.Parse(filter.From)
		if err != nil {
			return nil, apperror.InvalidArgument("invalid from date %q", filter.From)
		}
		query = query.Where("creation_date >= ?", now.With(from).BeginningOfDay())
	}
	if filter.To != "" {
		to, err := now.Parse(filter.To)
		if err != nil {
			return nil, apperror.InvalidArgument("invalid to date %q", filter.To)
		}
		query = query.Where("creation_date <= ?", now.With(to).EndOfDay())
	}

	var parcels []parcelModel.Parcel
	if err := query.Order("creation_date DESC").Find(&parcels).Error; err != nil {
		return nil, apperror.Store("failed to list parcels", err)
	}
	return parcels, nil
}

// Get returns the parcel with id.
func (s *Service) Get(ctx context.Context, id string) (*parcelModel.Parcel, error) {
	return findParcel(s.DB.WithContext(ctx), id)
}

func findParcel(tx *gorm.DB, id string) (*parcelModel.Parcel, error) {
	var p parcelModel.Parcel
	if err := tx.Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Parcel not found")
		}
		return nil, apperror.Store("failed to fetch parcel", err)
	}
	return &p, nil
}

// Create stores req as a new parcel. ownerEmail is used when the body does
// not name an owner.
func (s *Service) Create(ctx context.Context, req parcelTypes.CreateRequest, ownerEmail string) (*parcelTypes.CreateResponse, error) {
	createdBy := strings.TrimSpace(req.CreatedBy)
	if createdBy == "" {
		createdBy = ownerEmail
	}
	if createdBy == "" {
		return nil, apperror.InvalidArgument("created_by is required")
	}

	var details datatypes.JSON
	if len(req.Extra) > 0 {
		raw, err := json.Marshal(req.Extra)
		if err != nil {
			return nil, apperror.InvalidArgument("invalid parcel details: %v", err)
		}
		details = datatypes.JSON(raw)
	}

	newParcel := parcelModel.Parcel{
		Title:            req.Title,
		Type:             req.Type,
		Weight:           req.Weight,
		Cost:             req.Cost,
		SenderName:       req.SenderName,
		SenderPhone:      req.SenderPhone,
		SenderRegion:     req.SenderRegion,
		SenderDistrict:   req.SenderDistrict,
		SenderAddress:    req.SenderAddress,
		ReceiverName:     req.ReceiverName,
		ReceiverPhone:    req.ReceiverPhone,
		ReceiverRegion:   req.ReceiverRegion,
		ReceiverDistrict: req.ReceiverDistrict,
		ReceiverAddress:  req.ReceiverAddress,
		Details:          details,
		CreatedBy:        createdBy,
		Status:           req.Status,
		TrackingID:       strings.TrimSpace(req.TrackingID),
		CreationDate:     time.Now(),
	}
	if err := s.DB.WithContext(ctx).Create(&newParcel).Error; err != nil {
		return nil, apperror.Store("failed to create parcel", err)
	}

	return &parcelTypes.CreateResponse{InsertedID: newParcel.ID, TrackingID: newParcel.TrackingID}, nil
}

// Delete removes the parcel. Its tracking events and payments stay as
// history.
func (s *Service) Delete(ctx context.Context, id string) (int64, error) {
	result := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&parcelModel.Parcel{})
	if result.Error != nil {
		return 0, apperror.Store("failed to delete parcel", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, apperror.NotFound("Parcel not found")
	}
	return result.RowsAffected, nil
}

// AssignRider hands a paid parcel to an approved rider and records the
// hand-over in the tracking log.
func (s *Service) AssignRider(ctx context.Context, id string, req parcelTypes.AssignRiderRequest) (*parcelModel.Parcel, error) {
	req.RiderEmail = strings.TrimSpace(req.RiderEmail)
	if err := req.Validate(); err != nil {
		return nil, apperror.InvalidArgument("%s", err.Error())
	}

	var updated *parcelModel.Parcel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := findParcel(tx, id)
		if err != nil {
			return err
		}
		if p.PaymentStatus != parcelModel.PaymentStatusPaid {
			return apperror.Conflict("Parcel must be paid before a rider is assigned")
		}
		if p.DeliveryStatus == parcelModel.DeliveryStatusDelivered {
			return apperror.Conflict("Parcel is already delivered")
		}

		var approved riderModel.Rider
		err = tx.Where("email = ? AND status = ?", req.RiderEmail, riderModel.StatusApproved).First(&approved).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("No approved rider with email " + req.RiderEmail)
		}
		if err != nil {
			return apperror.Store("failed to fetch rider", err)
		}

		err = tx.Model(p).Updates(map[string]interface{}{
			"assigned_rider_email": req.RiderEmail,
			"delivery_status":      parcelModel.DeliveryStatusRiderAssigned,
		}).Error
		if err != nil {
			return apperror.Store("failed to assign rider", err)
		}

		if _, err := trackingService.Append(tx, trackingTypes.RecordRequest{
			TrackingID: p.TrackingID,
			ParcelID:   p.ID,
			Status:     parcelModel.DeliveryStatusRiderAssigned,
			Location:   req.Location,
		}); err != nil {
			return err
		}

		updated, err = findParcel(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishStatusChange(ctx, updated)
	return updated, nil
}

// UpdateDeliveryStatus moves a parcel along its delivery. Only the assigned
// rider or an admin may do so.
func (s *Service) UpdateDeliveryStatus(ctx context.Context, id string, req parcelTypes.DeliveryStatusRequest, actorEmail string, actorIsAdmin bool) (*parcelModel.Parcel, error) {
	req.Status = strings.TrimSpace(req.Status)
	if err := req.Validate(); err != nil {
		return nil, apperror.InvalidArgument("%s", err.Error())
	}
	if !parcelModel.IsRiderUpdatable(req.Status) {
		return nil, apperror.InvalidArgument("invalid delivery status %q, must be %s or %s",
			req.Status, parcelModel.DeliveryStatusInTransit, parcelModel.DeliveryStatusDelivered)
	}

	var updated *parcelModel.Parcel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := findParcel(tx, id)
		if err != nil {
			return err
		}
		if !actorIsAdmin && (p.AssignedRiderEmail == "" || p.AssignedRiderEmail != actorEmail) {
			return apperror.Forbidden("Only the assigned rider can update this parcel")
		}
		if p.AssignedRiderEmail == "" {
			return apperror.Conflict("Parcel has no rider assigned")
		}
		if p.DeliveryStatus == parcelModel.DeliveryStatusDelivered {
			return apperror.Conflict("Parcel is already delivered")
		}

		if err := tx.Model(p).Update("delivery_status", req.Status).Error; err != nil {
			return apperror.Store("failed to update delivery status", err)
		}
		if _, err := trackingService.Append(tx, trackingTypes.RecordRequest{
			TrackingID: p.TrackingID,
			ParcelID:   p.ID,
			Status:     req.Status,
			Location:   req.Location,
		}); err != nil {
			return err
		}

		updated, err = findParcel(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishStatusChange(ctx, updated)
	return updated, nil
}

func (s *Service) publishStatusChange(ctx context.Context, p *parcelModel.Parcel) {
	events.Publish(ctx, s.Publisher, constants.EventParcelStatusChanged, map[string]any{
		"parcel_id":       p.ID,
		"tracking_id":     p.TrackingID,
		"delivery_status": p.DeliveryStatus,
		"rider_email":     p.AssignedRiderEmail,
	})
}

package rider

import (
	"context"
	"strings"
	"time"

	"parcel-delivery/apperror"
	"parcel-delivery/constants"
	"parcel-delivery/logger"
	riderModel "parcel-delivery/models/rider"
	userModel "parcel-delivery/models/user"
	"parcel-delivery/services/events"
	riderTypes "parcel-delivery/types/rider"

	"gorm.io/gorm"
)

// Service runs the rider application workflow:
// pending -> approved -> inactive, or pending -> removed on cancel.
type Service struct {
	DB        *gorm.DB
	Publisher events.Publisher
}

// NewRiderService creates a new rider service
func NewRiderService(db *gorm.DB, publisher events.Publisher) *Service {
	return &Service{DB: db, Publisher: publisher}
}

// Apply stores a new application, pending unless the caller set a status.
func (s *Service) Apply(ctx context.Context, req riderTypes.ApplyRequest) (*riderTypes.ApplyResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		return nil, apperror.InvalidArgument("%s", err.Error())
	}

	status := riderModel.Status(req.Status)
	if status == "" {
		status = riderModel.StatusPending
	}
	if !status.IsValid() {
		return nil, apperror.InvalidArgument("invalid rider status %q", req.Status)
	}

	application := riderModel.Rider{
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		Age:              req.Age,
		Region:           req.Region,
		District:         req.District,
		NID:              req.NID,
		BikeBrand:        req.BikeBrand,
		BikeRegistration: req.BikeRegistration,
		Status:           status,
		CreatedAt:        time.Now(),
	}
	if err := s.DB.WithContext(ctx).Create(&application).Error; err != nil {
		return nil, apperror.Store("failed to save rider application", err)
	}
	return &riderTypes.ApplyResponse{InsertedID: application.ID}, nil
}

// ListPending returns applications awaiting review, newest first.
func (s *Service) ListPending(ctx context.Context) ([]riderModel.Rider, error) {
	return s.listByStatus(ctx, riderModel.StatusPending)
}

// ListActive returns approved riders, newest first.
func (s *Service) ListActive(ctx context.Context) ([]riderModel.Rider, error) {
	return s.listByStatus(ctx, riderModel.StatusApproved)
}

func (s *Service) listByStatus(ctx context.Context, status riderModel.Status) ([]riderModel.Rider, error) {
	var riders []riderModel.Rider
	err := s.DB.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&riders).Error
	if err != nil {
		return nil, apperror.Store("failed to list riders", err)
	}
	return riders, nil
}

// Approve marks the application approved and promotes the applicant's user
// account to the rider role. Both writes commit together. An applicant
// with no user account is still approved; RoleUpdated reports false and
// ReconcileRoles promotes them once the account exists.
func (s *Service) Approve(ctx context.Context, id string) (*riderTypes.ApproveResponse, error) {
	var (
		response riderTypes.ApproveResponse
		email    string
	)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&riderModel.Rider{}).Where("id = ?", id).Update("status", riderModel.StatusApproved)
		if result.Error != nil {
			return apperror.Store("failed to approve rider", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperror.NotFound("Rider application not found")
		}
		response.ModifiedCount = result.RowsAffected

		var application riderModel.Rider
		if err := tx.Select("id", "email").Where("id = ?", id).First(&application).Error; err != nil {
			return apperror.Store("failed to read rider application", err)
		}
		email = application.Email
		if email == "" {
			return nil
		}

		roleResult := tx.Model(&userModel.User{}).Where("email = ?", email).Update("role", constants.RoleRider)
		if roleResult.Error != nil {
			return apperror.Store("failed to promote user to rider", roleResult.Error)
		}
		response.RoleUpdated = roleResult.RowsAffected > 0
		return nil
	})
	if err != nil {
		return nil, err
	}

	if email != "" && !response.RoleUpdated {
		logger.Warning("Rider " + id + " approved but no user account exists for " + email)
	}
	events.Publish(ctx, s.Publisher, constants.EventRiderApproved, map[string]any{
		"rider_id":     id,
		"email":        email,
		"role_updated": response.RoleUpdated,
	})
	return &response, nil
}

// Deactivate marks an application inactive. The user's role is left as is.
func (s *Service) Deactivate(ctx context.Context, id string) (*riderTypes.UpdateResponse, error) {
	result := s.DB.WithContext(ctx).Model(&riderModel.Rider{}).Where("id = ?", id).Update("status", riderModel.StatusInactive)
	if result.Error != nil {
		return nil, apperror.Store("failed to deactivate rider", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperror.NotFound("Rider application not found")
	}
	return &riderTypes.UpdateResponse{ModifiedCount: result.RowsAffected}, nil
}

// Cancel deletes an application whatever its status.
func (s *Service) Cancel(ctx context.Context, id string) (*riderTypes.DeleteResponse, error) {
	result := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&riderModel.Rider{})
	if result.Error != nil {
		return nil, apperror.Store("failed to cancel rider application", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperror.NotFound("Rider application not found")
	}
	return &riderTypes.DeleteResponse{DeletedCount: result.RowsAffected}, nil
}

// ReconcileRoles promotes every plain user that has an approved rider
// application, repairing approvals made before the account existed. It
// returns the promoted emails.
func (s *Service) ReconcileRoles(ctx context.Context) ([]string, error) {
	var emails []string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&userModel.User{}).
			Where("role = ?", constants.RoleUser).
			Where("email IN (?)", tx.Model(&riderModel.Rider{}).Select("email").Where("status = ?", riderModel.StatusApproved)).
			Pluck("email", &emails).Error
		if err != nil {
			return err
		}
		if len(emails) == 0 {
			return nil
		}
		return tx.Model(&userModel.User{}).Where("email IN ?", emails).Update("role", constants.RoleRider).Error
	})
	if err != nil {
		return nil, apperror.Store("failed to reconcile rider roles", err)
	}

	for _, email := range emails {
		logger.Info("Promoted " + email + " to rider during reconciliation")
	}
	return emails, nil
}

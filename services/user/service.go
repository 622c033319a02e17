package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"parcel-delivery/apperror"
	"parcel-delivery/constants"
	userModel "parcel-delivery/models/user"
	userTypes "parcel-delivery/types/user"

	"gorm.io/gorm"
)

// searchLimit caps email substring search results.
const searchLimit = 10

// Service manages user accounts and their roles.
type Service struct {
	DB *gorm.DB
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// UpsertLogin records a sign-in. The first sign-in for an email creates
// the account; later ones only refresh last_login.
func (s *Service) UpsertLogin(ctx context.Context, req userTypes.LoginRequest) (*userTypes.UpsertResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		return nil, apperror.InvalidArgument("%s", err.Error())
	}

	inserted, id, err := s.upsert(ctx, req)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost an insert race with a concurrent login for the same email.
		inserted, id, err = s.upsert(ctx, req)
	}
	if err != nil {
		return nil, apperror.Store("failed to record login", err)
	}
	return &userTypes.UpsertResult{Inserted: inserted, ID: id}, nil
}

func (s *Service) upsert(ctx context.Context, req userTypes.LoginRequest) (bool, string, error) {
	now := time.Now()

	result := s.DB.WithContext(ctx).Model(&userModel.User{}).
		Where("email = ?", req.Email).
		Update("last_login", now)
	if result.Error != nil {
		return false, "", result.Error
	}
	if result.RowsAffected > 0 {
		return false, "", nil
	}

	newUser := userModel.User{
		Email:     req.Email,
		Name:      req.Name,
		PhotoURL:  req.PhotoURL,
		Role:      constants.RoleUser,
		CreatedAt: now,
		LastLogin: now,
	}
	if err := s.DB.WithContext(ctx).Create(&newUser).Error; err != nil {
		return false, "", err
	}
	return true, newUser.ID, nil
}

// FindByEmail returns the user with email.
func (s *Service) FindByEmail(ctx context.Context, email string) (*userModel.User, error) {
	var u userModel.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Store("failed to fetch user", err)
	}
	return &u, nil
}

// GetRoleByEmail returns the user's role, "user" when none is stored.
func (s *Service) GetRoleByEmail(ctx context.Context, email string) (string, error) {
	u, err := s.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return u.EffectiveRole(), nil
}

// SearchByEmailSubstring finds users whose email contains keyword,
// ignoring case.
func (s *Service) SearchByEmailSubstring(ctx context.Context, keyword string) ([]userModel.User, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, apperror.InvalidArgument("search keyword is required")
	}

	pattern := "%" + escapeLike(strings.ToLower(keyword)) + "%"
	var users []userModel.User
	err := s.DB.WithContext(ctx).
		Where(`LOWER(email) LIKE ? ESCAPE '\'`, pattern).
		Order("created_at DESC").
		Limit(searchLimit).
		Find(&users).Error
	if err != nil {
		return nil, apperror.Store("failed to search users", err)
	}
	if len(users) == 0 {
		return nil, apperror.NotFound("No users matched " + keyword)
	}
	return users, nil
}

// ListByRole returns users holding role, newest first.
func (s *Service) ListByRole(ctx context.Context, role string) ([]userModel.User, error) {
	if !constants.IsValidRole(role) {
		return nil, apperror.InvalidArgument("invalid role %q, must be one of %s", role, strings.Join(constants.Roles, ", "))
	}

	var users []userModel.User
	err := s.DB.WithContext(ctx).
		Where("role = ?", role).
		Order("created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, apperror.Store("failed to list users", err)
	}
	return users, nil
}

// SetRole assigns role to the user with email. Setting the role a user
// already has succeeds.
func (s *Service) SetRole(ctx context.Context, email, role string) (*userTypes.RoleResponse, error) {
	if !constants.IsValidRole(role) {
		return nil, apperror.InvalidArgument("invalid role %q", role)
	}

	result := s.DB.WithContext(ctx).Model(&userModel.User{}).
		Where("email = ?", email).
		Update("role", role)
	if result.Error != nil {
		return nil, apperror.Store("failed to update role", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperror.NotFound("User not found")
	}
	return &userTypes.RoleResponse{Email: email, Role: role}, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

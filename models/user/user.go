package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"parcel-delivery/constants"
)

// User is an account keyed by email. Rows are created on first login.
type User struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email     string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Name      string    `gorm:"type:varchar(255)" json:"name,omitempty"`
	PhotoURL  string    `gorm:"type:varchar(2048)" json:"photo_url,omitempty"`
	Role      string    `gorm:"type:varchar(20);not null;default:user;index" json:"role"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	LastLogin time.Time `json:"last_login"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = constants.RoleUser
	}
	return nil
}

// EffectiveRole returns the stored role, or "user" when none is set.
func (u User) EffectiveRole() string {
	if u.Role == "" {
		return constants.RoleUser
	}
	return u.Role
}

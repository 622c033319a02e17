package rider

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rider is a courier application. The row is kept after approval and
// carries the rider's current standing.
type Rider struct {
	ID               string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name             string    `gorm:"type:varchar(255);not null" json:"name"`
	Email            string    `gorm:"type:varchar(255);not null;index" json:"email"`
	Phone            string    `gorm:"type:varchar(20)" json:"phone"`
	Age              int       `json:"age,omitempty"`
	Region           string    `gorm:"type:varchar(100)" json:"region"`
	District         string    `gorm:"type:varchar(100)" json:"district"`
	NID              string    `gorm:"column:nid;type:varchar(50)" json:"nid"`
	BikeBrand        string    `gorm:"type:varchar(100)" json:"bike_brand"`
	BikeRegistration string    `gorm:"type:varchar(50)" json:"bike_registration"`
	Status           Status    `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusInactive Status = "inactive"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusInactive:
		return true
	default:
		return false
	}
}

func (r *Rider) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = StatusPending
	}
	return nil
}

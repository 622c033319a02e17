package tracking

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is one append-only entry in a parcel's delivery history.
type Event struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	TrackingID string    `gorm:"column:tracking_id;type:varchar(64);not null;index" json:"trackingId"`
	ParcelID   string    `gorm:"type:varchar(36);not null;index" json:"parcelId"`
	Status     string    `gorm:"type:varchar(50);not null" json:"status"`
	Location   string    `gorm:"type:varchar(255);not null;default:Unknown" json:"location"`
	Timestamp  time.Time `gorm:"not null;index" json:"timestamp"`
}

// DefaultLocation is stored when an event is recorded without a location.
const DefaultLocation = "Unknown"

func (Event) TableName() string {
	return "tracking_events"
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Location == "" {
		e.Location = DefaultLocation
	}
	return nil
}

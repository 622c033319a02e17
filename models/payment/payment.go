package payment

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment records a settled charge for a parcel. TrackingID is copied from
// the parcel at payment time and is not kept in sync afterwards.
type Payment struct {
	ID            string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ParcelID      string    `gorm:"type:varchar(36);not null;index" json:"parcelId"`
	TrackingID    string    `gorm:"column:tracking_id;type:varchar(64)" json:"trackingId"`
	TransactionID string    `gorm:"type:varchar(255);not null" json:"transactionId"`
	Email         string    `gorm:"type:varchar(255);not null;index" json:"email"`
	Amount        float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaidAt        time.Time `gorm:"not null;index" json:"paid_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

package parcel

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Parcel is a delivery order created by its owner.
type Parcel struct {
	ID     string  `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title  string  `gorm:"type:varchar(255)" json:"title"`
	Type   string  `gorm:"type:varchar(50)" json:"type"`
	Weight float64 `gorm:"type:decimal(10,2)" json:"weight"`
	Cost   float64 `gorm:"type:decimal(10,2)" json:"cost"`

	SenderName     string `gorm:"type:varchar(255)" json:"sender_name"`
	SenderPhone    string `gorm:"type:varchar(20)" json:"sender_phone"`
	SenderRegion   string `gorm:"type:varchar(100)" json:"sender_region"`
	SenderDistrict string `gorm:"type:varchar(100)" json:"sender_district"`
	SenderAddress  string `gorm:"type:text" json:"sender_address"`

	ReceiverName     string `gorm:"type:varchar(255)" json:"receiver_name"`
	ReceiverPhone    string `gorm:"type:varchar(20)" json:"receiver_phone"`
	ReceiverRegion   string `gorm:"type:varchar(100)" json:"receiver_region"`
	ReceiverDistrict string `gorm:"type:varchar(100)" json:"receiver_district"`
	ReceiverAddress  string `gorm:"type:text" json:"receiver_address"`

	// Details keeps any extra fields the client sent with the parcel.
	Details datatypes.JSON `gorm:"type:json" json:"details,omitempty"`

	CreatedBy          string    `gorm:"type:varchar(255);not null;index" json:"created_by"`
	Status             string    `gorm:"type:varchar(50);not null;default:pending;index" json:"status"`
	PaymentStatus      string    `gorm:"type:varchar(20);not null;default:unpaid" json:"payment_status"`
	DeliveryStatus     string    `gorm:"type:varchar(30);not null;default:not_collected" json:"delivery_status"`
	AssignedRiderEmail string    `gorm:"type:varchar(255);index" json:"assigned_rider_email,omitempty"`
	TransactionID      string    `gorm:"type:varchar(255)" json:"transactionId,omitempty"`
	TrackingID         string    `gorm:"column:tracking_id;type:varchar(64);index" json:"trackingId"`
	CreationDate       time.Time `gorm:"not null;index" json:"creation_date"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Parcel status values
const (
	StatusPending = "pending"
	StatusPaid    = "Paid"

	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "Paid"
)

// DeliveryStatus values, in the order a parcel moves through them.
const (
	DeliveryStatusNotCollected  = "not_collected"
	DeliveryStatusRiderAssigned = "rider_assigned"
	DeliveryStatusInTransit     = "in_transit"
	DeliveryStatusDelivered     = "delivered"
)

// IsRiderUpdatable reports whether a rider may move a parcel into status.
func IsRiderUpdatable(status string) bool {
	return status == DeliveryStatusInTransit || status == DeliveryStatusDelivered
}

func (p *Parcel) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.TrackingID == "" {
		p.TrackingID = NewTrackingID()
	}
	if p.Status == "" {
		p.Status = StatusPending
	}
	if p.PaymentStatus == "" {
		p.PaymentStatus = PaymentStatusUnpaid
	}
	if p.DeliveryStatus == "" {
		p.DeliveryStatus = DeliveryStatusNotCollected
	}
	if p.CreationDate.IsZero() {
		p.CreationDate = time.Now()
	}
	return nil
}

// NewTrackingID returns a time-sortable public tracking number.
func NewTrackingID() string {
	return "TRK-" + strings.ToUpper(ksuid.New().String())
}

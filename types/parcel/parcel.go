package parcel

import (
	"encoding/json"
	"fmt"
)

// CreateRequest is the body of POST /parcels. Keys that are not fields
// here are kept verbatim in Extra.
type CreateRequest struct {
	Title  string  `json:"title"`
	Type   string  `json:"type"`
	Weight float64 `json:"weight"`
	Cost   float64 `json:"cost"`

	SenderName     string `json:"sender_name"`
	SenderPhone    string `json:"sender_phone"`
	SenderRegion   string `json:"sender_region"`
	SenderDistrict string `json:"sender_district"`
	SenderAddress  string `json:"sender_address"`

	ReceiverName     string `json:"receiver_name"`
	ReceiverPhone    string `json:"receiver_phone"`
	ReceiverRegion   string `json:"receiver_region"`
	ReceiverDistrict string `json:"receiver_district"`
	ReceiverAddress  string `json:"receiver_address"`

	CreatedBy  string `json:"created_by"`
	Status     string `json:"status"`
	TrackingID string `json:"trackingId"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Keys the server owns; a client cannot smuggle them in through Extra.
var reservedKeys = map[string]bool{
	"id": true, "payment_status": true, "delivery_status": true, "transactionId": true,
	"assigned_rider_email": true, "creation_date": true, "updated_at": true, "details": true,
}

var knownKeys = map[string]bool{
	"title": true, "type": true, "weight": true, "cost": true,
	"sender_name": true, "sender_phone": true, "sender_region": true, "sender_district": true, "sender_address": true,
	"receiver_name": true, "receiver_phone": true, "receiver_region": true, "receiver_district": true, "receiver_address": true,
	"created_by": true, "status": true, "trackingId": true,
}

// ParseCreateRequest decodes body into the typed fields and collects the
// remaining keys.
func ParseCreateRequest(body []byte) (CreateRequest, error) {
	var req CreateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return req, fmt.Errorf("invalid parcel body: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return req, fmt.Errorf("invalid parcel body: %w", err)
	}
	for key, value := range raw {
		if knownKeys[key] || reservedKeys[key] {
			continue
		}
		if req.Extra == nil {
			req.Extra = make(map[string]json.RawMessage)
		}
		req.Extra[key] = value
	}
	return req, nil
}

// ListFilter narrows GET /parcels. Empty fields do not filter. From and To
// are calendar dates, To is inclusive.
type ListFilter struct {
	Email         string `query:"email"`
	Status        string `query:"status"`
	PaymentStatus string `query:"payment_status"`
	From          string `query:"from"`
	To            string `query:"to"`
}

// CreateResponse answers POST /parcels.
type CreateResponse struct {
	InsertedID string `json:"insertedId"`
	TrackingID string `json:"trackingId"`
}

// AssignRiderRequest is the body of PATCH /parcels/:id/assign.
type AssignRiderRequest struct {
	RiderEmail string `json:"rider_email"`
	Location   string `json:"location"`
}

func (r AssignRiderRequest) Validate() error {
	if r.RiderEmail == "" {
		return fmt.Errorf("rider_email is required")
	}
	return nil
}

// DeliveryStatusRequest is the body of PATCH /parcels/:id/delivery-status.
type DeliveryStatusRequest struct {
	Status   string `json:"status"`
	Location string `json:"location"`
}

func (r DeliveryStatusRequest) Validate() error {
	if r.Status == "" {
		return fmt.Errorf("status is required")
	}
	return nil
}

package tracking

import "fmt"

// RecordRequest is the body of POST /tracking.
type RecordRequest struct {
	TrackingID string `json:"trackingId"`
	ParcelID   string `json:"parcelId"`
	Status     string `json:"status"`
	Location   string `json:"location"`
}

func (r RecordRequest) Validate() error {
	if r.TrackingID == "" {
		return fmt.Errorf("trackingId is required")
	}
	if r.ParcelID == "" {
		return fmt.Errorf("parcelId is required")
	}
	if r.Status == "" {
		return fmt.Errorf("status is required")
	}
	return nil
}

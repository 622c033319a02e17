package rider

import "fmt"

// ApplyRequest is the body of POST /riders.
type ApplyRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Age              int    `json:"age"`
	Region           string `json:"region"`
	District         string `json:"district"`
	NID              string `json:"nid"`
	BikeBrand        string `json:"bike_brand"`
	BikeRegistration string `json:"bike_registration"`
	Status           string `json:"status"`
}

func (r ApplyRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	return nil
}

// ApplyResponse answers POST /riders.
type ApplyResponse struct {
	InsertedID string `json:"insertedId"`
}

// ApproveResponse reports the rider update and whether the applicant's
// user account was promoted.
type ApproveResponse struct {
	ModifiedCount int64 `json:"modifiedCount"`
	RoleUpdated   bool  `json:"roleUpdated"`
}

// UpdateResponse answers deactivate.
type UpdateResponse struct {
	ModifiedCount int64 `json:"modifiedCount"`
}

// DeleteResponse answers cancel.
type DeleteResponse struct {
	DeletedCount int64 `json:"deletedCount"`
}

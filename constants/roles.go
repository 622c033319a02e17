package constants

// User roles
const (
	RoleUser  = "user"
	RoleRider = "rider"
	RoleAdmin = "admin"
)

// Roles lists every role a user can hold.
var Roles = []string{RoleAdmin, RoleRider, RoleUser}

// IsValidRole reports whether role is one of Roles.
func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Locals keys set by the auth middleware
const (
	LocalsClaims = "user"
	LocalsEmail  = "email"
)

// Event routing keys published on the events exchange
const (
	EventParcelPaid          = "parcel.paid"
	EventParcelStatusChanged = "parcel.status_changed"
	EventRiderApproved       = "rider.approved"
)

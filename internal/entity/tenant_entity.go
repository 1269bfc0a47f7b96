package entity

import "time"

// Tenant is one field-service business. Id is the external tenant key
// the telephony vendor passes in the setup custom parameters.
type Tenant struct {
	Id           string
	Name         string
	Timezone     string // IANA name, e.g. "America/New_York"
	OfficeEmail  string
	OfficePhone  string
	SMSFrom      string // Twilio-provisioned sending number
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

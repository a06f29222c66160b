package domain

import "time"

// RequestStatus enumerates the lifecycle states of a blood request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "Pending"
	RequestApproved RequestStatus = "Approved"
	RequestDenied   RequestStatus = "Denied"
)

// UrgencyLevel enumerates how urgent a blood request is.
type UrgencyLevel string

const (
	UrgencyNormal    UrgencyLevel = "Normal"
	UrgencyUrgent    UrgencyLevel = "Urgent"
	UrgencyEmergency UrgencyLevel = "Emergency"
)

// ParseUrgency validates a raw urgency string.
func ParseUrgency(s string) (UrgencyLevel, bool) {
	switch UrgencyLevel(s) {
	case UrgencyNormal, UrgencyUrgent, UrgencyEmergency:
		return UrgencyLevel(s), true
	}
	return "", false
}

// ParseRequestStatus validates a raw status string.
func ParseRequestStatus(s string) (RequestStatus, bool) {
	switch RequestStatus(s) {
	case RequestPending, RequestApproved, RequestDenied:
		return RequestStatus(s), true
	}
	return "", false
}

// BloodRequest is a patient request for blood units.
type BloodRequest struct {
	ID            int
	PatientID     int
	PatientName   string
	PatientAge    int
	BloodGroup    BloodGroup
	Units         int
	Hospital      string
	Location      string
	RequiredDate  time.Time
	Urgency       UrgencyLevel
	Reason        string
	ContactNumber string
	Status        RequestStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

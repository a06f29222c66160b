package domain

import "time"

// EligibilityCheck is one persisted outcome of the donor eligibility quiz.
type EligibilityCheck struct {
	ID        int
	UserID    int
	Eligible  bool
	Reason    string
	CheckDate time.Time
}

package service

import (
	"context"

	"server/internal/domain"
)

// EligibilityInput is the donor eligibility questionnaire.
type EligibilityInput struct {
	Age           int      `json:"age"`
	Weight        float64  `json:"weight"`
	RecentIllness bool     `json:"recentIllness"`
	RecentSurgery bool     `json:"recentSurgery"`
	Medications   []string `json:"medications"`
}

// Eligibility evaluates the donation eligibility rules and records outcomes
// for authenticated users.
type Eligibility struct {
	history domain.EligibilityRepository
}

// NewEligibility builds the eligibility checker.
func NewEligibility(history domain.EligibilityRepository) *Eligibility {
	return &Eligibility{history: history}
}

// Evaluate applies the screening rules. The first failing rule wins.
func (e *Eligibility) Evaluate(in EligibilityInput) (bool, string) {
	switch {
	case in.Age < 18 || in.Age > 65:
		return false, "Age must be between 18 and 65 years."
	case in.Weight < 50:
		return false, "Weight must be at least 50 kg."
	case in.RecentIllness:
		return false, "Cannot donate if you've been ill in the past 2 weeks."
	case in.RecentSurgery:
		return false, "Cannot donate if you've had surgery in the past 6 months."
	case len(in.Medications) > 0:
		return false, "Some medications may affect eligibility. Please consult with healthcare provider."
	}
	return true, ""
}

// Check evaluates the rules and, when userID is non-zero, persists the
// outcome to the caller's history.
func (e *Eligibility) Check(ctx context.Context, userID int, in EligibilityInput) (bool, string, error) {
	eligible, reason := e.Evaluate(in)
	if userID != 0 {
		_, err := e.history.Save(ctx, &domain.EligibilityCheck{
			UserID:   userID,
			Eligible: eligible,
			Reason:   reason,
		})
		if err != nil {
			return eligible, reason, err
		}
	}
	return eligible, reason, nil
}

// History returns the caller's saved eligibility checks.
func (e *Eligibility) History(ctx context.Context, userID int) ([]domain.EligibilityCheck, error) {
	return e.history.ListByUserID(ctx, userID)
}

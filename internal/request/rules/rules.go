// Package rules holds the pure business rules for collaborative payment
// requests: creation validation, contribution eligibility, and progress math.
//
// Nothing here touches the network. These checks duplicate rules the backend
// enforces authoritatively; they exist so the client can reject bad input
// before a call leaves the device. The server remains the final gate.
package rules

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// SplitType defines how a request divides its target among contributors
type SplitType string

const (
	// SplitTypeOpen allows arbitrary per-contribution amounts up to the
	// remaining balance.
	SplitTypeOpen SplitType = "OPEN"
	// SplitTypeEqual divides the target evenly across maxParticipants.
	SplitTypeEqual SplitType = "EQUAL"
)

// Valid reports whether t is a known split type.
func (t SplitType) Valid() bool {
	return t == SplitTypeOpen || t == SplitTypeEqual
}

// Status represents the lifecycle state of a payment request
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusExpired   Status = "EXPIRED"
)

// Terminal reports whether no further contributions are accepted.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusExpired
}

const (
	// MinParticipants is the smallest meaningful EQUAL split.
	MinParticipants = 2
	// MaxParticipants caps EQUAL splits to keep suggested amounts sane.
	MaxParticipants = 100
	// MaxAmount is a safety ceiling on request targets.
	MaxAmount = 1_000_000
	// MinDescriptionLen keeps request labels meaningful on shared links.
	MinDescriptionLen = 5
)

// FieldError tags a single violated constraint with the offending field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors collects every violation found in one pass so a caller can surface
// all problems at once instead of failing on the first.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// CreateInput is the locally validated portion of a creation payload.
type CreateInput struct {
	TotalAmount     float64
	Description     string
	SplitType       SplitType
	MaxParticipants int
	ExpiryDate      time.Time
}

// ValidateCreate checks a creation payload against every local constraint.
// It returns nil when the payload is valid, otherwise an Errors value with
// one entry per violated rule.
func ValidateCreate(in CreateInput, now time.Time) error {
	var errs Errors

	if in.TotalAmount <= 0 {
		errs = append(errs, FieldError{Field: "totalAmount", Message: "amount must be greater than zero"})
	} else if in.TotalAmount > MaxAmount {
		errs = append(errs, FieldError{Field: "totalAmount", Message: fmt.Sprintf("amount must not exceed %d", MaxAmount)})
	}

	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		errs = append(errs, FieldError{Field: "description", Message: "description is required"})
	} else if len(desc) < MinDescriptionLen {
		errs = append(errs, FieldError{Field: "description", Message: fmt.Sprintf("description must be at least %d characters", MinDescriptionLen)})
	}

	if !in.SplitType.Valid() {
		errs = append(errs, FieldError{Field: "splitType", Message: "split type must be OPEN or EQUAL"})
	}

	if in.SplitType == SplitTypeEqual {
		if in.MaxParticipants < MinParticipants || in.MaxParticipants > MaxParticipants {
			errs = append(errs, FieldError{
				Field:   "maxParticipants",
				Message: fmt.Sprintf("participants must be between %d and %d", MinParticipants, MaxParticipants),
			})
		}
	}

	if !in.ExpiryDate.After(now) {
		errs = append(errs, FieldError{Field: "expiryDate", Message: "expiry must be in the future"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SuggestedAmount computes the per-contributor share for an EQUAL split.
// A zero total or participant count yields 0 rather than NaN/Inf; creation
// validation rejects those upstream.
func SuggestedAmount(totalAmount float64, maxParticipants int) float64 {
	if totalAmount <= 0 || maxParticipants <= 0 {
		return 0
	}
	return roundToTwoDecimals(totalAmount / float64(maxParticipants))
}

// Progress returns the funded percentage of a request, clamped to [0, 100].
func Progress(amountPaid, totalAmount float64) float64 {
	if totalAmount <= 0 {
		return 0
	}
	pct := amountPaid / totalAmount * 100
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// IsExpired reports whether now is strictly past the expiry date.
func IsExpired(expiryDate, now time.Time) bool {
	return now.After(expiryDate)
}

// Contributor is the minimal view of a prior contribution needed for
// eligibility checks.
type Contributor struct {
	UserID string
	Paid   bool
}

// CanContribute reports whether userID may contribute to a request in the
// given state: the request must be ACTIVE, unexpired, and the user must not
// already have a PAID contribution on it.
func CanContribute(status Status, expiryDate time.Time, now time.Time, userID string, prior []Contributor) bool {
	if status != StatusActive {
		return false
	}
	if IsExpired(expiryDate, now) {
		return false
	}
	for _, c := range prior {
		if c.Paid && c.UserID == userID {
			return false
		}
	}
	return true
}

// roundToTwoDecimals rounds a monetary value to cents.
func roundToTwoDecimals(value float64) float64 {
	return math.Round(value*100) / 100
}

package request

import (
	"time"

	"github.com/mzansipay/wallet/internal/request/rules"
)

// ContributionStatus represents the settlement state of a single contribution
type ContributionStatus string

const (
	ContributionPaid    ContributionStatus = "PAID"
	ContributionPending ContributionStatus = "PENDING"
	ContributionFailed  ContributionStatus = "FAILED"
)

// Contribution is one user's payment toward a request's target
type Contribution struct {
	UserID    string             `json:"userId"`
	Amount    float64            `json:"amount"`
	Status    ContributionStatus `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
	Notes     string             `json:"notes,omitempty"`
}

// PaymentRequest is the authoritative record of a collaborative payment
// request as returned by the backend. The client never mutates one locally;
// every change is observed by replacing the whole snapshot with a fresh fetch.
type PaymentRequest struct {
	ID              string          `json:"id"`
	TotalAmount     float64         `json:"totalAmount"`
	AmountPaid      float64         `json:"amountPaid"`
	AmountRemaining float64         `json:"amountRemaining"`
	Description     string          `json:"description"`
	MerchantID      string          `json:"merchantId"`
	SplitType       rules.SplitType `json:"splitType"`
	MaxParticipants *int            `json:"maxParticipants,omitempty"`
	Status          rules.Status    `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	ExpiryDate      time.Time       `json:"expiryDate"`
	Contributions   []Contribution  `json:"contributions"`

	// Server-derived convenience fields, recomputed on every fetch.
	ContributorCount int     `json:"contributorCount"`
	CanContribute    bool    `json:"canContribute"`
	SuggestedAmount  float64 `json:"suggestedAmount"`
}

// Progress returns the funded percentage of the request.
func (r *PaymentRequest) Progress() float64 {
	return rules.Progress(r.AmountPaid, r.TotalAmount)
}

// EligibleContributor reports whether userID may still contribute, based on
// this snapshot. The backend remains the final authority.
func (r *PaymentRequest) EligibleContributor(userID string, now time.Time) bool {
	return rules.CanContribute(r.Status, r.ExpiryDate, now, userID, r.contributors())
}

// contributors converts the contribution list to the rules package's view
func (r *PaymentRequest) contributors() []rules.Contributor {
	out := make([]rules.Contributor, len(r.Contributions))
	for i, c := range r.Contributions {
		out[i] = rules.Contributor{UserID: c.UserID, Paid: c.Status == ContributionPaid}
	}
	return out
}

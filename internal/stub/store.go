// Package stub is a reference backend implementing the request-service and
// ledger-service wire contracts. It exists so the wallet can run end-to-end
// without the production backend and so integration tests have a real HTTP
// surface to drive. It is the authority for amount accrual and status
// transitions, mirroring what the production service owns.
package stub

import (
	"context"
	"errors"
	"time"

	"github.com/mzansipay/wallet/internal/request"
	"github.com/mzansipay/wallet/internal/request/rules"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("payment request not found")

// Record is the persisted form of a payment request. Derived fields
// (amountPaid, contributorCount, canContribute, suggestedAmount) are never
// stored; they are recomputed on every read.
type Record struct {
	ID              string                 `json:"id"`
	TotalAmount     float64                `json:"totalAmount"`
	Description     string                 `json:"description"`
	MerchantID      string                 `json:"merchantId"`
	CreatedBy       string                 `json:"createdBy"`
	SplitType       rules.SplitType        `json:"splitType"`
	MaxParticipants int                    `json:"maxParticipants,omitempty"`
	Status          rules.Status           `json:"status"`
	CreatedAt       time.Time              `json:"createdAt"`
	ExpiryDate      time.Time              `json:"expiryDate"`
	Contributions   []request.Contribution `json:"contributions"`
}

// Store persists payment request records. Save is a full upsert: the record
// replaces any existing one under the same id, which makes re-applying the
// same mutation harmless.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	ListByCreator(ctx context.Context, userID string) ([]*Record, error)
	ListByContributor(ctx context.Context, userID string) ([]*Record, error)
	Close() error
}

// clone deep-copies a record so callers can never alias store-held state.
func clone(rec *Record) *Record {
	out := *rec
	out.Contributions = make([]request.Contribution, len(rec.Contributions))
	copy(out.Contributions, rec.Contributions)
	return &out
}

// hasContribution reports whether userID appears among the record's
// contributions regardless of status.
func hasContribution(rec *Record, userID string) bool {
	for _, c := range rec.Contributions {
		if c.UserID == userID {
			return true
		}
	}
	return false
}

package request

import (
	"time"

	"github.com/mzansipay/wallet/internal/request/rules"
)

// CreateForm is the user's intent to create a collaborative request. The
// recipient is a human payment identifier (typically an email) and is
// resolved to a backend merchant id before the creation call.
type CreateForm struct {
	TotalAmount     float64
	Description     string
	RecipientEmail  string
	SplitType       rules.SplitType
	MaxParticipants int
	ExpiryDate      time.Time
}

// rulesInput extracts the locally validated fields.
func (f *CreateForm) rulesInput() rules.CreateInput {
	return rules.CreateInput{
		TotalAmount:     f.TotalAmount,
		Description:     f.Description,
		SplitType:       f.SplitType,
		MaxParticipants: f.MaxParticipants,
		ExpiryDate:      f.ExpiryDate,
	}
}

// createPayload is the wire shape of POST /api/v1/requests.
type createPayload struct {
	TotalAmount     float64         `json:"totalAmount"`
	Description     string          `json:"description"`
	MerchantID      string          `json:"merchantId"`
	SplitType       rules.SplitType `json:"splitType"`
	MaxParticipants *int            `json:"maxParticipants"`
	ExpiryDate      time.Time       `json:"expiryDate"`
}

// contributePayload is the wire shape of POST /api/v1/requests/{id}/contribute.
type contributePayload struct {
	UserID string  `json:"userId"`
	Amount float64 `json:"amount"`
	Notes  string  `json:"notes,omitempty"`
}

// History is the partial-failure-tolerant join of a user's request history.
// Each branch carries its own error; one branch failing never discards the
// other's result.
type History struct {
	Created        []PaymentRequest
	Contributed    []PaymentRequest
	CreatedErr     error
	ContributedErr error
}

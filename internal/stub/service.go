package stub

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mzansipay/wallet/internal/request"
	"github.com/mzansipay/wallet/internal/request/rules"
)

// Common errors
var (
	ErrRequestExpired        = errors.New("request has expired")
	ErrRequestCompleted      = errors.New("request is already completed")
	ErrDuplicateContribution = errors.New("user has already contributed to this request")
	ErrOverRemaining         = errors.New("contribution exceeds remaining amount")
	ErrInvalidAmount         = errors.New("contribution amount must be greater than zero")
	ErrMissingCreator        = errors.New("creator identity is required")
)

// Service owns the request lifecycle: creation, contribution accrual, and
// the ACTIVE → COMPLETED/EXPIRED transitions the production backend decides.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a new lifecycle service over the given store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// CreateInput is the creation payload as received on the wire.
type CreateInput struct {
	TotalAmount     float64         `json:"totalAmount"`
	Description     string          `json:"description"`
	MerchantID      string          `json:"merchantId"`
	SplitType       rules.SplitType `json:"splitType"`
	MaxParticipants *int            `json:"maxParticipants"`
	ExpiryDate      time.Time       `json:"expiryDate"`
}

// Create validates and stores a new request, returning the client view.
func (s *Service) Create(ctx context.Context, createdBy string, in *CreateInput) (*request.PaymentRequest, error) {
	if createdBy == "" {
		return nil, ErrMissingCreator
	}

	maxParticipants := 0
	if in.MaxParticipants != nil {
		maxParticipants = *in.MaxParticipants
	}
	if err := rules.ValidateCreate(rules.CreateInput{
		TotalAmount:     in.TotalAmount,
		Description:     in.Description,
		SplitType:       in.SplitType,
		MaxParticipants: maxParticipants,
		ExpiryDate:      in.ExpiryDate,
	}, s.now()); err != nil {
		return nil, err
	}
	if in.MerchantID == "" {
		return nil, rules.Errors{{Field: "merchantId", Message: "merchant is required"}}
	}

	rec := &Record{
		ID:              uuid.NewString(),
		TotalAmount:     in.TotalAmount,
		Description:     in.Description,
		MerchantID:      in.MerchantID,
		CreatedBy:       createdBy,
		SplitType:       in.SplitType,
		MaxParticipants: maxParticipants,
		Status:          rules.StatusActive,
		CreatedAt:       s.now(),
		ExpiryDate:      in.ExpiryDate,
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return nil, err
	}
	return s.view(rec, createdBy), nil
}

// Get returns the current view of a request for the given viewer. Expiry is
// applied lazily: an ACTIVE record past its expiry date transitions to
// EXPIRED on read.
func (s *Service) Get(ctx context.Context, id, viewerID string) (*request.PaymentRequest, error) {
	rec, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(rec, viewerID), nil
}

// Contribute appends a PAID contribution and applies the COMPLETED
// transition once the target is met.
func (s *Service) Contribute(ctx context.Context, id, userID string, amount float64, notes string) (*request.PaymentRequest, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	rec, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	switch rec.Status {
	case rules.StatusCompleted:
		return nil, ErrRequestCompleted
	case rules.StatusExpired:
		return nil, ErrRequestExpired
	}
	if hasContribution(rec, userID) {
		return nil, ErrDuplicateContribution
	}
	if remaining := remainingAmount(rec); amount > remaining {
		return nil, fmt.Errorf("%w: %.2f remaining", ErrOverRemaining, remaining)
	}

	rec.Contributions = append(rec.Contributions, request.Contribution{
		UserID:    userID,
		Amount:    amount,
		Status:    request.ContributionPaid,
		CreatedAt: s.now(),
		Notes:     notes,
	})
	if paidAmount(rec) >= rec.TotalAmount {
		rec.Status = rules.StatusCompleted
	}

	if err := s.store.Save(ctx, rec); err != nil {
		return nil, err
	}
	return s.view(rec, userID), nil
}

// Complete marks a request COMPLETED. Completing an already-completed
// request is a no-op; completing an expired one is rejected.
func (s *Service) Complete(ctx context.Context, id string) error {
	rec, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	switch rec.Status {
	case rules.StatusCompleted:
		return nil
	case rules.StatusExpired:
		return ErrRequestExpired
	}
	rec.Status = rules.StatusCompleted
	return s.store.Save(ctx, rec)
}

// ListCreatedBy returns the requests a user created, newest first.
func (s *Service) ListCreatedBy(ctx context.Context, userID string) ([]*request.PaymentRequest, error) {
	recs, err := s.store.ListByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, recs, userID)
}

// ListContributedBy returns the requests a user contributed to.
func (s *Service) ListContributedBy(ctx context.Context, userID string) ([]*request.PaymentRequest, error) {
	recs, err := s.store.ListByContributor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, recs, userID)
}

// load fetches a record and applies the lazy expiry transition.
func (s *Service) load(ctx context.Context, id string) (*Record, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Status == rules.StatusActive && rules.IsExpired(rec.ExpiryDate, s.now()) {
		rec.Status = rules.StatusExpired
		if err := s.store.Save(ctx, rec); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

func (s *Service) views(ctx context.Context, recs []*Record, viewerID string) ([]*request.PaymentRequest, error) {
	now := s.now()
	out := make([]*request.PaymentRequest, len(recs))
	for i, rec := range recs {
		// Listings apply expiry in the view only; the persisted transition
		// happens on the next direct read.
		if rec.Status == rules.StatusActive && rules.IsExpired(rec.ExpiryDate, now) {
			rec.Status = rules.StatusExpired
		}
		out[i] = s.view(rec, viewerID)
	}
	return out, nil
}

// view computes the derived fields the client sees on every fetch.
func (s *Service) view(rec *Record, viewerID string) *request.PaymentRequest {
	paid := paidAmount(rec)

	var maxParticipants *int
	suggested := 0.0
	if rec.SplitType == rules.SplitTypeEqual && rec.MaxParticipants > 0 {
		mp := rec.MaxParticipants
		maxParticipants = &mp
		suggested = rules.SuggestedAmount(rec.TotalAmount, rec.MaxParticipants)
	}

	view := &request.PaymentRequest{
		ID:               rec.ID,
		TotalAmount:      rec.TotalAmount,
		AmountPaid:       paid,
		AmountRemaining:  remainingAmount(rec),
		Description:      rec.Description,
		MerchantID:       rec.MerchantID,
		SplitType:        rec.SplitType,
		MaxParticipants:  maxParticipants,
		Status:           rec.Status,
		CreatedAt:        rec.CreatedAt,
		ExpiryDate:       rec.ExpiryDate,
		Contributions:    append([]request.Contribution(nil), rec.Contributions...),
		ContributorCount: contributorCount(rec),
		SuggestedAmount:  suggested,
	}
	view.CanContribute = rules.CanContribute(rec.Status, rec.ExpiryDate, s.now(), viewerID, contributors(rec))
	return view
}

func paidAmount(rec *Record) float64 {
	total := 0.0
	for _, c := range rec.Contributions {
		if c.Status == request.ContributionPaid {
			total += c.Amount
		}
	}
	return total
}

func remainingAmount(rec *Record) float64 {
	remaining := rec.TotalAmount - paidAmount(rec)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func contributorCount(rec *Record) int {
	seen := make(map[string]bool)
	for _, c := range rec.Contributions {
		if c.Status == request.ContributionPaid {
			seen[c.UserID] = true
		}
	}
	return len(seen)
}

func contributors(rec *Record) []rules.Contributor {
	out := make([]rules.Contributor, len(rec.Contributions))
	for i, c := range rec.Contributions {
		out[i] = rules.Contributor{UserID: c.UserID, Paid: c.Status == request.ContributionPaid}
	}
	return out
}

package request

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/mzansipay/wallet/internal/apiclient"
	"github.com/mzansipay/wallet/internal/request/rules"
	"github.com/mzansipay/wallet/internal/session"
)

// Ledger is the slice of the ledger service the orchestrator depends on:
// resolving a human payment identifier to a backend user id, and provisioning
// the gas capability that must exist before any funds move.
type Ledger interface {
	ResolveRecipientID(ctx context.Context, identifier string) (string, error)
	ActivatePay(ctx context.Context, userID string) error
}

// Service orchestrates collaborative payment requests against the backend.
// Every call is single-attempt; callers decide whether to re-invoke.
type Service struct {
	api    *apiclient.Client
	ledger Ledger
	now    func() time.Time
}

// NewService creates a new request orchestrator with dependencies injected
func NewService(api *apiclient.Client, ledger Ledger) *Service {
	return &Service{
		api:    api,
		ledger: ledger,
		now:    time.Now,
	}
}

// Create validates the form, resolves the recipient to a merchant id, and
// submits the creation call. The returned record is the server's canonical
// PaymentRequest, including derived fields such as the suggested amount.
func (s *Service) Create(ctx context.Context, sess session.Session, form *CreateForm) (*PaymentRequest, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	if err := rules.ValidateCreate(form.rulesInput(), s.now()); err != nil {
		return nil, err
	}

	merchantID, err := s.ledger.ResolveRecipientID(ctx, form.RecipientEmail)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRecipientNotFound, form.RecipientEmail)
	}

	payload := createPayload{
		TotalAmount: form.TotalAmount,
		Description: form.Description,
		MerchantID:  merchantID,
		SplitType:   form.SplitType,
		ExpiryDate:  form.ExpiryDate,
	}
	if form.SplitType == rules.SplitTypeEqual {
		payload.MaxParticipants = &form.MaxParticipants
	}

	var req PaymentRequest
	if err := s.api.Post(ctx, "/api/v1/requests", payload, &req, apiclient.AsUser(sess.UserID)); err != nil {
		var se *apiclient.StatusError
		if errors.As(err, &se) {
			return nil, fmt.Errorf("%w: %s", ErrCreateRejected, se.Message)
		}
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return &req, nil
}

// Get fetches the current authoritative state of a request.
func (s *Service) Get(ctx context.Context, id string) (*PaymentRequest, error) {
	var req PaymentRequest
	if err := s.api.Get(ctx, "/api/v1/requests/"+url.PathEscape(id), &req); err != nil {
		var se *apiclient.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrRequestNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return &req, nil
}

// Contribute submits a contribution on behalf of the session user.
//
// The sequence is strict: re-fetch the request and gate on eligibility bound
// to the fresh snapshot, activate the gas capability, then submit. A gas
// activation that succeeds before a failed contribution is not rolled back;
// the capability is harmless on its own and the backend reconciles state.
func (s *Service) Contribute(ctx context.Context, sess session.Session, id string, amount float64, notes string) (*PaymentRequest, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, rules.Errors{{Field: "amount", Message: "amount must be greater than zero"}}
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	switch {
	case current.Status.Terminal():
		return nil, fmt.Errorf("%w: request is %s", ErrContributionRejected, current.Status)
	case rules.IsExpired(current.ExpiryDate, now):
		return nil, fmt.Errorf("%w: request has expired", ErrContributionRejected)
	case !current.EligibleContributor(sess.UserID, now):
		return nil, fmt.Errorf("%w: user has already contributed", ErrContributionRejected)
	case amount > current.AmountRemaining:
		return nil, fmt.Errorf("%w: amount exceeds remaining balance of %.2f", ErrContributionRejected, current.AmountRemaining)
	}

	if err := s.ledger.ActivatePay(ctx, sess.UserID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGasActivation, err)
	}

	payload := contributePayload{UserID: sess.UserID, Amount: amount, Notes: notes}
	var updated PaymentRequest
	if err := s.api.Post(ctx, "/api/v1/requests/"+url.PathEscape(id)+"/contribute", payload, &updated, apiclient.AsUser(sess.UserID)); err != nil {
		var se *apiclient.StatusError
		if errors.As(err, &se) {
			if se.StatusCode == http.StatusNotFound {
				return nil, fmt.Errorf("%w: %s", ErrRequestNotFound, id)
			}
			return nil, fmt.Errorf("%w: %s", ErrContributionRejected, se.Message)
		}
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return &updated, nil
}

// Complete triggers the explicit terminal transition. Completing an
// already-completed request is not an error.
func (s *Service) Complete(ctx context.Context, id string) error {
	if err := s.api.Post(ctx, "/api/v1/requests/"+url.PathEscape(id)+"/complete", nil, nil); err != nil {
		var se *apiclient.StatusError
		if errors.As(err, &se) {
			if se.StatusCode == http.StatusNotFound {
				return fmt.Errorf("%w: %s", ErrRequestNotFound, id)
			}
			return fmt.Errorf("%w: %s", ErrTransport, se.Message)
		}
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return nil
}

// ListCreatedBy returns the requests the user created.
func (s *Service) ListCreatedBy(ctx context.Context, userID string) ([]PaymentRequest, error) {
	return s.list(ctx, "/api/v1/requests/created-by/"+url.PathEscape(userID))
}

// ListContributedBy returns the requests the user contributed to.
func (s *Service) ListContributedBy(ctx context.Context, userID string) ([]PaymentRequest, error) {
	return s.list(ctx, "/api/v1/requests/contributed-to/"+url.PathEscape(userID))
}

func (s *Service) list(ctx context.Context, path string) ([]PaymentRequest, error) {
	var reqs []PaymentRequest
	if err := s.api.Get(ctx, path, &reqs); err != nil {
		var se *apiclient.StatusError
		if errors.As(err, &se) {
			return nil, fmt.Errorf("%w: %s", ErrTransport, se.Message)
		}
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return reqs, nil
}

// History fetches the created and contributed views concurrently. Each branch
// succeeds or fails on its own; the caller gets whatever was retrievable plus
// a per-branch error for the rest.
func (s *Service) History(ctx context.Context, userID string) *History {
	h := &History{}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		h.Created, h.CreatedErr = s.ListCreatedBy(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		h.Contributed, h.ContributedErr = s.ListContributedBy(ctx, userID)
	}()
	wg.Wait()

	return h
}

package transfer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mzansipay/wallet/internal/apiclient"
	"github.com/mzansipay/wallet/internal/session"
)

// Common errors
var (
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrActivationFailed  = errors.New("pay activation failed")
	ErrTransferRejected  = errors.New("transfer rejected")
	ErrTransport         = errors.New("ledger service unreachable")
)

// Service talks to the ledger/transfer service: balances, recipient
// resolution, gas activation, and direct peer transfers.
type Service struct {
	api *apiclient.Client
}

// NewService creates a new ledger client.
func NewService(api *apiclient.Client) *Service {
	return &Service{api: api}
}

// Balance fetches the user's token holdings.
func (s *Service) Balance(ctx context.Context, userID string) (*Balance, error) {
	var bal Balance
	if err := s.api.Get(ctx, url.PathEscape(userID)+"/balance", &bal); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return &bal, nil
}

// HasSufficientFunds reports whether the user holds at least amount of the
// given token. Any lookup failure counts as insufficient; the ledger rejects
// an overdraft regardless.
func (s *Service) HasSufficientFunds(ctx context.Context, userID string, amount float64, currency string) bool {
	if currency == "" {
		currency = DefaultCurrency
	}
	bal, err := s.Balance(ctx, userID)
	if err != nil {
		return false
	}
	for _, token := range bal.Tokens {
		if token.Name != currency {
			continue
		}
		held, err := strconv.ParseFloat(token.Balance, 64)
		if err != nil {
			return false
		}
		return held >= amount
	}
	return false
}

// ResolveRecipient looks up a payment identity by its human identifier.
func (s *Service) ResolveRecipient(ctx context.Context, identifier string) (*Recipient, error) {
	var rec Recipient
	if err := s.api.Get(ctx, "recipient/"+url.PathEscape(identifier), &rec); err != nil {
		var se *apiclient.StatusError
		if errors.As(err, &se) && se.StatusCode != http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: %s", ErrRecipientNotFound, identifier)
		}
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return &rec, nil
}

// ResolveRecipientID resolves a human identifier straight to a backend user
// id. This is the form the request orchestrator depends on.
func (s *Service) ResolveRecipientID(ctx context.Context, identifier string) (string, error) {
	rec, err := s.ResolveRecipient(ctx, identifier)
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

// ActivatePay provisions the gas capability needed before any transfer or
// contribution can move funds.
func (s *Service) ActivatePay(ctx context.Context, userID string) error {
	if err := s.api.Post(ctx, "activate-pay/"+url.PathEscape(userID), nil, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrActivationFailed, err)
	}
	return nil
}

// Send executes a direct peer transfer: gas activation first, then the
// transfer call. The chain is strictly ordered and aborts on the first
// failure with nothing further attempted.
func (s *Service) Send(ctx context.Context, sess session.Session, recipientID string, amount float64, notes string) (*TransferResult, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	if err := s.ActivatePay(ctx, sess.UserID); err != nil {
		return nil, err
	}

	payload := transferPayload{
		TransactionAmount:    amount,
		TransactionRecipient: recipientID,
		TransactionNotes:     notes,
	}
	var result TransferResult
	if err := s.api.Post(ctx, "transfer/"+url.PathEscape(sess.UserID), payload, &result); err != nil {
		var se *apiclient.StatusError
		if errors.As(err, &se) {
			return nil, fmt.Errorf("%w: %s", ErrTransferRejected, se.Message)
		}
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return &result, nil
}

package stub

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/mzansipay/wallet/internal/transfer"
)

// Ledger errors
var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrNotActivated      = errors.New("pay capability not activated")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Ledger is an in-memory double of the ledger service: accounts, balances,
// gas activation, and direct transfers. Ledger state is deliberately not
// persisted; the stub reseeds it on start.
type Ledger struct {
	mu           sync.Mutex
	accounts     map[string]*account
	byIdentifier map[string]string
	activated    map[string]bool
}

type account struct {
	id         string
	identifier string
	firstName  string
	lastName   string
	balances   map[string]float64
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		accounts:     make(map[string]*account),
		byIdentifier: make(map[string]string),
		activated:    make(map[string]bool),
	}
}

// SeedAccount registers an account with an opening stablecoin balance.
func (l *Ledger) SeedAccount(id, identifier, firstName, lastName string, balance float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[id] = &account{
		id:         id,
		identifier: identifier,
		firstName:  firstName,
		lastName:   lastName,
		balances:   map[string]float64{transfer.DefaultCurrency: balance},
	}
	l.byIdentifier[identifier] = id
}

// Resolve looks up an account by its human payment identifier.
func (l *Ledger) Resolve(identifier string) (*transfer.Recipient, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id, ok := l.byIdentifier[identifier]
	if !ok {
		return nil, ErrAccountNotFound
	}
	acct := l.accounts[id]
	return &transfer.Recipient{
		ID:                acct.id,
		PaymentIdentifier: acct.identifier,
		FirstName:         acct.firstName,
		LastName:          acct.lastName,
		Email:             acct.identifier,
	}, nil
}

// Balance returns a user's token holdings.
func (l *Ledger) Balance(userID string) (*transfer.Balance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	acct, ok := l.accounts[userID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	bal := &transfer.Balance{}
	for name, amount := range acct.balances {
		bal.Tokens = append(bal.Tokens, transfer.TokenBalance{
			Name:    name,
			Balance: strconv.FormatFloat(amount, 'f', 2, 64),
			Symbol:  name,
		})
	}
	return bal, nil
}

// Activate provisions the pay capability. Activating twice is harmless.
func (l *Ledger) Activate(userID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.accounts[userID]; !ok {
		return ErrAccountNotFound
	}
	l.activated[userID] = true
	return nil
}

// Transfer moves funds between two accounts. The sender must have activated
// the pay capability and hold sufficient funds.
func (l *Ledger) Transfer(fromID, toID string, amount float64) (*transfer.TransferResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrInsufficientFunds)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	from, ok := l.accounts[fromID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	to, ok := l.accounts[toID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	if !l.activated[fromID] {
		return nil, ErrNotActivated
	}
	if from.balances[transfer.DefaultCurrency] < amount {
		return nil, ErrInsufficientFunds
	}

	from.balances[transfer.DefaultCurrency] -= amount
	to.balances[transfer.DefaultCurrency] += amount

	return &transfer.TransferResult{
		TransactionID: uuid.NewString(),
		Message:       "Transfer successful",
	}, nil
}

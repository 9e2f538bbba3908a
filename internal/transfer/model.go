package transfer

// DefaultCurrency is the stablecoin token used when none is specified.
const DefaultCurrency = "LZAR"

// TokenBalance is one token position in a user's wallet. Balances arrive as
// decimal strings from the ledger service.
type TokenBalance struct {
	Name    string `json:"name"`
	Balance string `json:"balance"`
	Symbol  string `json:"symbol"`
}

// Balance is a user's full token holding.
type Balance struct {
	Tokens []TokenBalance `json:"tokens"`
}

// Recipient is a resolved payment identity.
type Recipient struct {
	ID                string `json:"id"`
	PaymentIdentifier string `json:"paymentIdentifier"`
	FirstName         string `json:"firstName,omitempty"`
	LastName          string `json:"lastName,omitempty"`
	Email             string `json:"email,omitempty"`
}

// transferPayload is the wire shape of POST /transfer/{userId}.
type transferPayload struct {
	TransactionAmount    float64 `json:"transactionAmount"`
	TransactionRecipient string  `json:"transactionRecipient"`
	TransactionNotes     string  `json:"transactionNotes"`
}

// TransferResult reports a completed direct transfer.
type TransferResult struct {
	TransactionID string `json:"transactionId"`
	Message       string `json:"message,omitempty"`
}

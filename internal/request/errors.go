package request

import "errors"

// Common errors. Backend-provided messages are wrapped onto these sentinels
// so callers can branch with errors.Is while still surfacing the original
// message to the user.
var (
	ErrRecipientNotFound    = errors.New("recipient not found")
	ErrRequestNotFound      = errors.New("payment request not found")
	ErrCreateRejected       = errors.New("request creation rejected")
	ErrContributionRejected = errors.New("contribution rejected")
	ErrGasActivation        = errors.New("gas activation failed")
	ErrTransport            = errors.New("backend unreachable")
)

package ledger

import "errors"

var (
	// ErrInsufficientBalance ...
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInvalidAmount ...
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrTokenNotFound ...
	ErrTokenNotFound = errors.New("token not found")
	// ErrTokenAlreadyExists ...
	ErrTokenAlreadyExists = errors.New("token already exists")
	// ErrNotTokenOwner ...
	ErrNotTokenOwner = errors.New("transfer from address that does not own the token")
	// ErrInvalidRecipient ...
	ErrInvalidRecipient = errors.New("transfer to the zero address")
)

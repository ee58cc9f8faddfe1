package application

import "errors"

var (
	// ErrServiceUnavailable is returned when a ledger operation fails and the
	// exchange state had to be rolled back.
	ErrServiceUnavailable = errors.New("service is unavailable, try again later")
	// ErrInvalidWebhookTopic ...
	ErrInvalidWebhookTopic = errors.New("invalid webhook event type")
	// ErrFaucetDisabled ...
	ErrFaucetDisabled = errors.New("faucet is disabled")
	// ErrInvalidFaucetAmount ...
	ErrInvalidFaucetAmount = errors.New("faucet amount must be positive")
	// ErrMiningDisabled is returned when blocks are produced by an external
	// clock.
	ErrMiningDisabled = errors.New("manual mining is disabled")
)

package pubsub

import "errors"

var (
	// ErrSubscriptionExists ...
	ErrSubscriptionExists = errors.New("subscription already exists")
	// ErrSubscriptionNotFound ...
	ErrSubscriptionNotFound = errors.New("webhook not found")
	// ErrMissingTopic ...
	ErrMissingTopic = errors.New("missing subscription topic")
	// ErrInvalidEndpoint ...
	ErrInvalidEndpoint = errors.New("invalid webhook endpoint, must be an http(s) url")
	// ErrInvalidSubscriptionID ...
	ErrInvalidSubscriptionID = errors.New("invalid subscription id, must be a uuid")
)

package pubsub

import (
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/shoyu-network/shoyu-daemon/internal/core/ports"
)

// Subscription is a webhook registered for a topic. Topic is either an event
// type or ports.AnyTopic.
type Subscription struct {
	ID        string
	Event     string
	Endpoint  string
	Secret    string
	CreatedAt int64
}

type subscriptions []Subscription

func (s subscriptions) toPortable() []ports.Subscription {
	subs := make([]ports.Subscription, 0, len(s))
	for i := range s {
		sub := s[i]
		subs = append(subs, &sub)
	}
	return subs
}

func NewSubscription(event, endpoint, secret string) (*Subscription, error) {
	return NewSubscriptionWithID(uuid.New().String(), event, endpoint, secret)
}

// NewSubscriptionWithID validates the arguments and returns a subscription.
// The endpoint must be an absolute http(s) url.
func NewSubscriptionWithID(id, event, endpoint, secret string) (*Subscription, error) {
	if len(event) <= 0 {
		return nil, ErrMissingTopic
	}
	u, err := url.ParseRequestURI(endpoint)
	if err != nil || len(u.Host) <= 0 {
		return nil, ErrInvalidEndpoint
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrInvalidEndpoint
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidSubscriptionID
	}
	return &Subscription{
		ID:        id,
		Event:     event,
		Endpoint:  endpoint,
		Secret:    secret,
		CreatedAt: time.Now().Unix(),
	}, nil
}

func (s *Subscription) Topic() string {
	return s.Event
}

func (s *Subscription) Id() string {
	return s.ID
}

func (s *Subscription) NotifyAt() string {
	return s.Endpoint
}

func (s *Subscription) IsSecured() bool {
	return len(s.Secret) > 0
}

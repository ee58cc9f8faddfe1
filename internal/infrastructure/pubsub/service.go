package pubsub

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/shoyu-network/shoyu-daemon/internal/core/ports"
	"github.com/shoyu-network/shoyu-daemon/pkg/circuitbreaker"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.uber.org/ratelimit"
	"golang.org/x/sync/errgroup"
)

const (
	requestTimeout = 15 * time.Second
	tokenTTL       = 5 * time.Minute
)

type service struct {
	store      SubscriptionStore
	httpClient *client
	cb         *gobreaker.CircuitBreaker
	limiter    ratelimit.Limiter
}

// NewService returns a pubsub service notifying webhooks via http POST
// requests. Requests are throttled to at most rateLimit per second, a
// non-positive rateLimit disables throttling.
func NewService(store SubscriptionStore, rateLimit int) (ports.SecurePubSub, error) {
	if store == nil {
		return nil, fmt.Errorf("missing subscription store")
	}

	limiter := ratelimit.NewUnlimited()
	if rateLimit > 0 {
		limiter = ratelimit.New(rateLimit)
	}

	return &service{
		store:      store,
		httpClient: newHTTPClient(requestTimeout),
		cb:         circuitbreaker.NewCircuitBreaker("webhooks"),
		limiter:    limiter,
	}, nil
}

func (ws *service) Subscribe(topic, endpoint, secret string) (string, error) {
	sub, err := NewSubscription(topic, endpoint, secret)
	if err != nil {
		return "", err
	}

	return ws.addSubscription(sub)
}

func (ws *service) SubscribeWithID(id, topic, endpoint, secret string) (string, error) {
	sub, err := NewSubscriptionWithID(id, topic, endpoint, secret)
	if err != nil {
		return "", err
	}

	return ws.addSubscription(sub)
}

func (ws *service) Unsubscribe(_, id string) error {
	sub, err := ws.store.GetSubscription(id)
	if err != nil {
		return err
	}
	if sub == nil {
		return ErrSubscriptionNotFound
	}
	return ws.store.RemoveSubscription(id)
}

func (ws *service) ListSubscriptionsForTopic(topic string) []ports.Subscription {
	return ws.listSubscriptionsForTopic(topic).toPortable()
}

func (ws *service) Publish(topic string, message string) error {
	return ws.publishForTopic(topic, message)
}

func (ws *service) Close() error {
	return ws.store.Close()
}

func (ws *service) addSubscription(sub *Subscription) (string, error) {
	existing, err := ws.store.GetSubscription(sub.ID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return sub.ID, nil
	}

	if err := ws.store.AddSubscription(*sub); err != nil {
		return "", err
	}
	return sub.ID, nil
}

func (ws *service) listSubscriptionsForTopic(topic string) subscriptions {
	subs, err := ws.store.GetSubscriptionsForEvent(topic)
	if err != nil {
		log.WithError(err).Warnf("failed to list subscriptions for topic %s", topic)
		return nil
	}
	if topic != ports.AnyTopic && topic != ports.UnspecifiedTopic {
		subsForAnyTopic, err := ws.store.GetSubscriptionsForEvent(ports.AnyTopic)
		if err != nil {
			log.WithError(err).Warn("failed to list subscriptions for any topic")
		}
		subs = append(subs, subsForAnyTopic...)
	}
	return subs
}

func (ws *service) publishForTopic(topic, message string) error {
	subs := ws.listSubscriptionsForTopic(topic)

	eg := &errgroup.Group{}
	for i := range subs {
		sub := subs[i]
		eg.Go(func() error { return ws.doRequest(sub, message) })
	}
	return eg.Wait()
}

func (ws *service) doRequest(sub Subscription, payload string) error {
	ws.limiter.Take()

	_, err := ws.cb.Execute(func() (interface{}, error) {
		headers := map[string]string{
			"Content-Type": "application/json",
		}
		if sub.IsSecured() {
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
				Subject:   sub.ID,
				IssuedAt:  time.Now().Unix(),
				ExpiresAt: time.Now().Add(tokenTTL).Unix(),
			})
			tokenString, err := token.SignedString([]byte(sub.Secret))
			if err != nil {
				return nil, err
			}
			headers["Authorization"] = fmt.Sprintf("Bearer %s", tokenString)
		}

		status, resp, err := ws.httpClient.post(sub.Endpoint, payload, headers)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("webhook %s responded with status %d: %s", sub.ID, status, resp)
		}
		return nil, nil
	})

	return err
}

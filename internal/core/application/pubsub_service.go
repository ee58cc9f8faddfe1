package application

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shoyu-network/shoyu-daemon/internal/core/domain"
	"github.com/shoyu-network/shoyu-daemon/internal/core/ports"
	"github.com/shoyu-network/shoyu-daemon/pkg/stats"
	log "github.com/sirupsen/logrus"
)

const eventStreamBuffer = 64

// PubSubService publishes the exchange events to the registered webhooks and
// to the in-process event streams.
type PubSubService interface {
	AddWebhook(ctx context.Context, hook Webhook) (string, error)
	RemoveWebhook(ctx context.Context, id string) error
	ListWebhooks(ctx context.Context, event string) ([]WebhookInfo, error)
	PublishEvent(event domain.Event)
	// SubscribeEvents returns a stream of every published event along with
	// the function to stop receiving them. Slow readers miss events instead
	// of blocking the publisher.
	SubscribeEvents() (<-chan domain.Event, func())
	Close() error
}

type pubsubService struct {
	pubsub ports.SecurePubSub

	streams    map[string]chan domain.Event
	streamLock *sync.RWMutex
	closed     bool
	// webhooks are notified in order, one event at a time.
	queue chan publishRequest
	wg    *sync.WaitGroup
}

type publishRequest struct {
	topic   string
	message string
}

// NewPubSubService returns the event publisher. A nil SecurePubSub disables
// webhooks, events are still streamed in process.
func NewPubSubService(pubsub ports.SecurePubSub) PubSubService {
	svc := &pubsubService{
		pubsub:     pubsub,
		streams:    make(map[string]chan domain.Event),
		streamLock: &sync.RWMutex{},
		queue:      make(chan publishRequest, 1024),
		wg:         &sync.WaitGroup{},
	}
	if pubsub != nil {
		svc.wg.Add(1)
		go svc.notifyWebhooks()
	}
	return svc
}

func (s *pubsubService) AddWebhook(
	_ context.Context, hook Webhook,
) (string, error) {
	if s.pubsub == nil {
		return "", fmt.Errorf("webhooks are disabled")
	}
	topic, err := topicForEvent(hook.Event)
	if err != nil {
		return "", err
	}
	return s.pubsub.Subscribe(topic, hook.Endpoint, hook.Secret)
}

func (s *pubsubService) RemoveWebhook(_ context.Context, id string) error {
	if s.pubsub == nil {
		return fmt.Errorf("webhooks are disabled")
	}
	return s.pubsub.Unsubscribe(ports.UnspecifiedTopic, id)
}

func (s *pubsubService) ListWebhooks(
	_ context.Context, event string,
) ([]WebhookInfo, error) {
	if s.pubsub == nil {
		return nil, nil
	}
	topic := ports.UnspecifiedTopic
	if len(event) > 0 {
		t, err := topicForEvent(event)
		if err != nil {
			return nil, err
		}
		topic = t
	}

	subs := s.pubsub.ListSubscriptionsForTopic(topic)
	hooks := make([]WebhookInfo, 0, len(subs))
	for _, sub := range subs {
		hooks = append(hooks, WebhookInfo{
			Id:        sub.Id(),
			Event:     sub.Topic(),
			Endpoint:  sub.NotifyAt(),
			IsSecured: sub.IsSecured(),
		})
	}
	return hooks, nil
}

func (s *pubsubService) PublishEvent(event domain.Event) {
	if len(event.ID) <= 0 {
		event.ID = uuid.New().String()
	}
	stats.CountEvent(string(event.Type))

	s.streamLock.RLock()
	defer s.streamLock.RUnlock()

	if s.closed {
		return
	}
	for id, stream := range s.streams {
		select {
		case stream <- event:
		default:
			log.Warnf("event stream %s is full, dropping %s event", id, event.Type)
		}
	}

	if s.pubsub == nil {
		return
	}
	message, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).Warnf("failed to serialize %s event", event.Type)
		return
	}
	select {
	case s.queue <- publishRequest{string(event.Type), string(message)}:
	default:
		log.Warnf("webhook queue is full, dropping %s event", event.Type)
	}
}

func (s *pubsubService) SubscribeEvents() (<-chan domain.Event, func()) {
	id := uuid.New().String()
	stream := make(chan domain.Event, eventStreamBuffer)

	s.streamLock.Lock()
	if s.closed {
		s.streamLock.Unlock()
		close(stream)
		return stream, func() {}
	}
	s.streams[id] = stream
	s.streamLock.Unlock()

	once := &sync.Once{}
	return stream, func() {
		once.Do(func() {
			s.streamLock.Lock()
			defer s.streamLock.Unlock()
			if _, ok := s.streams[id]; ok {
				delete(s.streams, id)
				close(stream)
			}
		})
	}
}

func (s *pubsubService) Close() error {
	s.streamLock.Lock()
	if s.closed {
		s.streamLock.Unlock()
		return nil
	}
	s.closed = true
	for id, stream := range s.streams {
		delete(s.streams, id)
		close(stream)
	}
	close(s.queue)
	s.streamLock.Unlock()

	if s.pubsub == nil {
		return nil
	}
	s.wg.Wait()
	return s.pubsub.Close()
}

func (s *pubsubService) notifyWebhooks() {
	defer s.wg.Done()

	for req := range s.queue {
		if err := s.pubsub.Publish(req.topic, req.message); err != nil {
			log.WithError(err).Warnf("failed to notify webhooks of %s event", req.topic)
		}
	}
}

func topicForEvent(event string) (string, error) {
	if event == ports.AnyTopic || len(event) <= 0 {
		return ports.AnyTopic, nil
	}
	for _, t := range domain.EventTypes() {
		if string(t) == event {
			return event, nil
		}
	}
	return "", ErrInvalidWebhookTopic
}

package pubsub

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/timshannon/badgerhold/v4"
)

// SubscriptionStore persists the webhook subscriptions of the service.
type SubscriptionStore interface {
	AddSubscription(sub Subscription) error
	GetSubscription(id string) (*Subscription, error)
	RemoveSubscription(id string) error
	// GetSubscriptionsForEvent returns the subscriptions for the given event,
	// or all of them if event is empty.
	GetSubscriptionsForEvent(event string) ([]Subscription, error)
	Close() error
}

type inmemoryStore struct {
	subs map[string]Subscription
	lock *sync.RWMutex
}

// NewInMemoryStore returns a volatile subscription store.
func NewInMemoryStore() SubscriptionStore {
	return &inmemoryStore{make(map[string]Subscription), &sync.RWMutex{}}
}

func (s *inmemoryStore) AddSubscription(sub Subscription) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.subs[sub.ID]; ok {
		return ErrSubscriptionExists
	}
	s.subs[sub.ID] = sub
	return nil
}

func (s *inmemoryStore) GetSubscription(id string) (*Subscription, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	sub, ok := s.subs[id]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (s *inmemoryStore) RemoveSubscription(id string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.subs, id)
	return nil
}

func (s *inmemoryStore) GetSubscriptionsForEvent(event string) ([]Subscription, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	subs := make([]Subscription, 0)
	for _, sub := range s.subs {
		if len(event) <= 0 || sub.Event == event {
			subs = append(subs, sub)
		}
	}
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].ID < subs[j].ID
	})
	return subs, nil
}

func (s *inmemoryStore) Close() error {
	return nil
}

type badgerStore struct {
	store *badgerhold.Store
}

// NewBadgerStore returns a subscription store persisted on disk in the given
// directory.
func NewBadgerStore(datadir string, logger badger.Logger) (SubscriptionStore, error) {
	opts := badger.DefaultOptions(filepath.Join(datadir, "pubsub"))
	opts.Logger = logger

	store, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, fmt.Errorf("opening pubsub db: %w", err)
	}
	return &badgerStore{store}, nil
}

func (s *badgerStore) AddSubscription(sub Subscription) error {
	if err := s.store.Insert(sub.ID, sub); err != nil {
		if err == badgerhold.ErrKeyExists {
			return ErrSubscriptionExists
		}
		return err
	}
	return nil
}

func (s *badgerStore) GetSubscription(id string) (*Subscription, error) {
	var sub Subscription
	if err := s.store.Get(id, &sub); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (s *badgerStore) RemoveSubscription(id string) error {
	if err := s.store.Delete(id, Subscription{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return err
	}
	return nil
}

func (s *badgerStore) GetSubscriptionsForEvent(event string) ([]Subscription, error) {
	var query *badgerhold.Query
	if len(event) > 0 {
		query = badgerhold.Where("Event").Eq(event).SortBy("ID")
	} else {
		query = (&badgerhold.Query{}).SortBy("ID")
	}

	var subs []Subscription
	if err := s.store.Find(&subs, query); err != nil {
		return nil, err
	}
	return subs, nil
}

func (s *badgerStore) Close() error {
	return s.store.Close()
}

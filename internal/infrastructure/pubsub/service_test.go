package pubsub_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/shoyu-network/shoyu-daemon/internal/core/ports"
	"github.com/shoyu-network/shoyu-daemon/internal/infrastructure/pubsub"
	"github.com/stretchr/testify/require"
)

const testMessage = `{"event":"Claim","collection":"0x5fbdb2315678afecb367f032d93f642f64180aa3","hash":"0x01"}`

type request struct {
	path    string
	payload string
	subject string
}

type testWebServer struct {
	*httptest.Server
	secret string

	lock     sync.Mutex
	requests []request
}

func newTestWebServer(t *testing.T, secret string) *testWebServer {
	srv := &testWebServer{secret: secret}
	srv.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Bad method", http.StatusMethodNotAllowed)
			return
		}
		if r.Header.Get("Content-Type") == "" {
			http.Error(w, "Missing Content-Type header", http.StatusUnsupportedMediaType)
			return
		}
		if r.URL.Path == "/failing" {
			http.Error(w, "Unavailable", http.StatusServiceUnavailable)
			return
		}

		var subject string
		if auth := r.Header.Get("Authorization"); len(auth) > 0 {
			claims := &jwt.StandardClaims{}
			tokenString := strings.TrimPrefix(auth, "Bearer ")
			_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
				return []byte(srv.secret), nil
			})
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}
			subject = claims.Subject
		}

		payload, _ := io.ReadAll(r.Body)
		srv.lock.Lock()
		srv.requests = append(srv.requests, request{r.URL.Path, string(payload), subject})
		srv.lock.Unlock()
		fmt.Fprintf(w, "Done")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (s *testWebServer) received() []request {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]request{}, s.requests...)
}

func TestPubSubService(t *testing.T) {
	stores := map[string]func(t *testing.T) pubsub.SubscriptionStore{
		"inmemory": func(*testing.T) pubsub.SubscriptionStore {
			return pubsub.NewInMemoryStore()
		},
		"badger": func(t *testing.T) pubsub.SubscriptionStore {
			store, err := pubsub.NewBadgerStore(t.TempDir(), nil)
			require.NoError(t, err)
			return store
		},
	}

	for name, newStore := range stores {
		newStore := newStore
		t.Run(name, func(t *testing.T) {
			secret := "supersecret"
			server := newTestWebServer(t, secret)

			svc, err := pubsub.NewService(newStore(t), 100)
			require.NoError(t, err)
			t.Cleanup(func() {
				//nolint
				svc.Close()
			})

			claimID, err := svc.Subscribe("Claim", server.URL+"/claim", secret)
			require.NoError(t, err)
			_, err = svc.Subscribe("Claim", server.URL+"/claim", "")
			require.NoError(t, err)
			anyID, err := svc.Subscribe(ports.AnyTopic, server.URL+"/all", "")
			require.NoError(t, err)

			_, err = svc.Subscribe("Claim", "not an url", "")
			require.ErrorIs(t, err, pubsub.ErrInvalidEndpoint)
			_, err = svc.Subscribe("Claim", "ftp://localhost/claim", "")
			require.ErrorIs(t, err, pubsub.ErrInvalidEndpoint)
			_, err = svc.Subscribe("", server.URL, "")
			require.ErrorIs(t, err, pubsub.ErrMissingTopic)

			subs := svc.ListSubscriptionsForTopic("Claim")
			require.Len(t, subs, 3)
			subs = svc.ListSubscriptionsForTopic(ports.AnyTopic)
			require.Len(t, subs, 1)
			require.Equal(t, anyID, subs[0].Id())
			require.False(t, subs[0].IsSecured())
			subs = svc.ListSubscriptionsForTopic(ports.UnspecifiedTopic)
			require.Len(t, subs, 3)

			require.NoError(t, svc.Publish("Claim", testMessage))
			requests := server.received()
			require.Len(t, requests, 3)

			var secured int
			for _, r := range requests {
				require.Equal(t, testMessage, r.payload)
				if r.subject == claimID {
					secured++
				}
			}
			require.Equal(t, 1, secured)

			// Only the catch-all webhook is notified.
			require.NoError(t, svc.Publish("Cancel", testMessage))
			require.Len(t, server.received(), 4)

			require.NoError(t, svc.Unsubscribe("Claim", claimID))
			require.ErrorIs(t, svc.Unsubscribe("Claim", claimID), pubsub.ErrSubscriptionNotFound)
			require.Len(t, svc.ListSubscriptionsForTopic("Claim"), 2)

			id := uuid.New().String()
			gotID, err := svc.SubscribeWithID(id, "Bid", server.URL+"/failing", "")
			require.NoError(t, err)
			require.Equal(t, id, gotID)
			require.Error(t, svc.Publish("Bid", testMessage))

			_, err = svc.SubscribeWithID("not-a-uuid", "Bid", server.URL, "")
			require.ErrorIs(t, err, pubsub.ErrInvalidSubscriptionID)
		})
	}
}

func TestNewService(t *testing.T) {
	_, err := pubsub.NewService(nil, 0)
	require.Error(t, err)
}

package httpinterface

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shoyu-network/shoyu-daemon/internal/core/application"
	log "github.com/sirupsen/logrus"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type eventsHandler struct {
	pubsubSvc application.PubSubService
}

func newEventsHandler(pubsubSvc application.PubSubService) *eventsHandler {
	return &eventsHandler{pubsubSvc}
}

// streamEvents upgrades the connection and forwards every published event,
// optionally filtered by the comma separated list of the event query param.
func (h *eventsHandler) streamEvents(c *gin.Context) {
	filter, err := parseEventTypes(c.Query("event"))
	if err != nil {
		badRequest(c, err)
		return
	}

	events, unsubscribe := h.pubsubSvc.SubscribeEvents()
	defer unsubscribe()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Debug("failed to upgrade events connection")
		return
	}
	defer conn.Close()

	// Incoming messages are discarded, reading only detects the client going
	// away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(
				websocket.PingMessage, nil, time.Now().Add(writeTimeout),
			); err != nil {
				return
			}
		case event, ok := <-events:
			if !ok {
				conn.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
					time.Now().Add(writeTimeout),
				)
				return
			}
			if filter != nil && !filter[event.Type] {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(event); err != nil {
				log.WithError(err).Debug("failed to write event")
				return
			}
		}
	}
}

package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/AnshRaj112/contactbook-backend/internal/apperrors"
	"github.com/AnshRaj112/contactbook-backend/internal/middleware"
	"github.com/AnshRaj112/contactbook-backend/internal/services"
)

const (
	feedWriteWait  = 10 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = (feedPongWait * 9) / 10
)

// ContactFeed streams the caller's contact events over a WebSocket.
// The connection is server-push only; client frames are read and dropped
// so that pongs and close frames are processed.
type ContactFeed struct {
	events   *services.ContactEvents
	log      *zap.Logger
	upgrader websocket.Upgrader
}

// NewContactFeed builds the feed handler. Browser upgrades must come from
// one of allowedOrigins; clients that send no Origin header are accepted.
func NewContactFeed(events *services.ContactEvents, allowedOrigins []string, log *zap.Logger) *ContactFeed {
	return &ContactFeed{
		events: events,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// ServeHTTP handles GET /ws/contacts
func (f *ContactFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, r, f.log, apperrors.New(apperrors.CodeUnauthenticated, "Not authorized, no token"))
		return
	}

	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		f.log.Debug("contact feed upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	events, unsubscribe := f.events.Subscribe(ownerID)
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(4 * 1024)
		_ = conn.SetReadDeadline(time.Now().Add(feedPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(feedPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(feedPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case evt, open := <-events:
			if !open {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(feedWriteWait)); err != nil {
				return
			}
		}
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if strings.EqualFold(strings.TrimSpace(o), origin) {
				return true
			}
		}
		return false
	}
}

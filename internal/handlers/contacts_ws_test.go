package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AnshRaj112/contactbook-backend/internal/middleware"
	"github.com/AnshRaj112/contactbook-backend/internal/services"
)

func newFeedServer(t *testing.T, events *services.ContactEvents, origins []string) string {
	t.Helper()
	feed := NewContactFeed(events, origins, zap.NewNop())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		feed.ServeHTTP(w, r.WithContext(middleware.WithUserID(r.Context(), "owner-1")))
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestContactFeedDeliversOwnerEvents(t *testing.T) {
	events := services.NewContactEvents(nil, zap.NewNop())
	url := newFeedServer(t, events, nil)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	got := make(chan services.ContactEvent, 1)
	go func() {
		var evt services.ContactEvent
		if err := conn.ReadJSON(&evt); err == nil {
			got <- evt
		}
	}()

	// The server subscribes just after the handshake, so keep publishing
	// until the first event lands.
	deadline := time.After(2 * time.Second)
	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case evt := <-got:
			assert.Equal(t, services.EventContactCreated, evt.Type)
			assert.Equal(t, "owner-1", evt.OwnerID)
			return
		case <-tick.C:
			require.NoError(t, events.Publish(context.Background(), services.ContactEvent{
				Type: services.EventContactCreated, OwnerID: "owner-1", ContactID: "c1",
			}))
		case <-deadline:
			t.Fatal("no event received")
		}
	}
}

func TestContactFeedRejectsForeignOrigin(t *testing.T) {
	url := newFeedServer(t, services.NewContactEvents(nil, zap.NewNop()), []string{"https://app.example.com"})

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"https://evil.example.com"}})
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"https://app.example.com"}})
	require.NoError(t, err)
	conn.Close()
}

func TestContactFeedWithoutUser(t *testing.T) {
	feed := NewContactFeed(services.NewContactEvents(nil, zap.NewNop()), nil, zap.NewNop())
	rec := httptest.NewRecorder()
	feed.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws/contacts", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

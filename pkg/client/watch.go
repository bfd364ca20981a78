package client

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// ContactEvent is a change notice from the feed. Treat it as a signal to
// refetch, not as a patch.
type ContactEvent struct {
	Type      string    `json:"type"`
	OwnerID   string    `json:"owner_id"`
	ContactID string    `json:"contact_id"`
	Timestamp time.Time `json:"timestamp"`
}

const watchPath = "/ws/contacts"

// Watch streams the caller's contact events to fn until ctx is done or the
// connection drops. It returns nil when ctx ends the stream.
func (c *Client) Watch(ctx context.Context, fn func(ContactEvent)) error {
	token, err := c.token()
	if err != nil {
		return err
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL(c.Transport.BaseURL())+watchPath, header)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			c.Transport.emitUnauthorized(UnauthorizedEvent{Token: token, Path: watchPath})
			return &APIError{Status: resp.StatusCode, Message: "Not authorized"}
		}
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	})
	defer stop()

	for {
		var evt ContactEvent
		if err := conn.ReadJSON(&evt); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return err
		}
		fn(evt)
	}
}

func wsURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base
}

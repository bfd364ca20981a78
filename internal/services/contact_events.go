package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	EventContactCreated = "contact.created"
	EventContactDeleted = "contact.deleted"

	contactChannelPrefix = "contacts:owner:"
	subscriberBuffer     = 16
)

// ContactEvent tells an owner's open clients that their list changed. It
// is a refresh trigger, not a patch: clients refetch the list.
type ContactEvent struct {
	Type      string    `json:"type"`
	OwnerID   string    `json:"owner_id"`
	ContactID string    `json:"contact_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ContactEvents fans contact events out to subscribed connections. With a
// Redis client, events go through Redis pub/sub so every instance sees
// them; without one, delivery is in-process only.
type ContactEvents struct {
	rdb *redis.Client
	log *zap.Logger

	mu   sync.RWMutex
	subs map[string]map[chan ContactEvent]struct{}
}

func NewContactEvents(rdb *redis.Client, log *zap.Logger) *ContactEvents {
	return &ContactEvents{
		rdb:  rdb,
		log:  log,
		subs: make(map[string]map[chan ContactEvent]struct{}),
	}
}

// Subscribe registers interest in ownerID's events. The returned function
// unsubscribes and closes the channel; it is safe to call more than once.
func (e *ContactEvents) Subscribe(ownerID string) (<-chan ContactEvent, func()) {
	ch := make(chan ContactEvent, subscriberBuffer)

	e.mu.Lock()
	if e.subs[ownerID] == nil {
		e.subs[ownerID] = make(map[chan ContactEvent]struct{})
	}
	e.subs[ownerID][ch] = struct{}{}
	e.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subs[ownerID], ch)
			if len(e.subs[ownerID]) == 0 {
				delete(e.subs, ownerID)
			}
			e.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers event to the owner's subscribers.
func (e *ContactEvents) Publish(ctx context.Context, event ContactEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if e.rdb == nil {
		e.fanOut(event)
		return nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return e.rdb.Publish(ctx, contactChannelPrefix+event.OwnerID, data).Err()
}

// Run relays Redis messages to local subscribers until ctx is done. It
// returns immediately when Redis is not configured.
func (e *ContactEvents) Run(ctx context.Context) {
	if e.rdb == nil {
		return
	}

	backoff := time.Second
	for ctx.Err() == nil {
		err := e.relay(ctx)
		if ctx.Err() != nil {
			return
		}
		e.log.Warn("contact event subscriber stopped; retrying", zap.Error(err), zap.Duration("backoff", backoff))
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > 30*time.Second {
			backoff = 30 * time.Second
		}
	}
}

func (e *ContactEvents) relay(ctx context.Context) error {
	pubsub := e.rdb.PSubscribe(ctx, contactChannelPrefix+"*")
	defer pubsub.Close()
	// ReceiveMessage does not watch ctx; closing the subscription unblocks it.
	stop := context.AfterFunc(ctx, func() { _ = pubsub.Close() })
	defer stop()

	e.log.Info("contact event subscriber started", zap.String("pattern", contactChannelPrefix+"*"))
	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			return err
		}

		var event ContactEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			e.log.Warn("dropping malformed contact event", zap.Error(err))
			continue
		}
		if event.OwnerID == "" {
			event.OwnerID = strings.TrimPrefix(msg.Channel, contactChannelPrefix)
		}
		e.fanOut(event)
	}
}

// fanOut is a non-blocking send; a subscriber whose buffer is full misses
// the event, which is harmless because any later event triggers the same
// refetch.
func (e *ContactEvents) fanOut(event ContactEvent) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for ch := range e.subs[event.OwnerID] {
		select {
		case ch <- event:
		default:
			e.log.Debug("contact event dropped for slow subscriber", zap.String("owner_id", event.OwnerID))
		}
	}
}

package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/inkwell-backend/internal/logger"
	"github.com/redis/go-redis/v9"
)

const userChannelPrefix = "journal:user:"

// ChangeEvent tells a user's clients that a topic changed. Clients re-query and
// replace what they show; the event never carries the data itself.
type ChangeEvent struct {
	UserID    string    `json:"user_id"`
	Topic     string    `json:"topic"`
	Timestamp time.Time `json:"timestamp"`
}

type subscription struct {
	topic string
	ch    chan ChangeEvent
}

// Hub fans change events out to local subscribers. With Redis configured every
// instance hears every publish, so a write on one instance reaches sockets on all of them.
type Hub struct {
	client *redis.Client

	mu   sync.RWMutex
	subs map[string]map[*subscription]struct{}

	readyOnce sync.Once
	ready     chan struct{}
}

func NewHub(client *redis.Client) *Hub {
	return &Hub{
		client: client,
		subs:   make(map[string]map[*subscription]struct{}),
		ready:  make(chan struct{}),
	}
}

// Subscribe registers interest in userID's topic. The channel holds at most one
// pending event; a burst of writes collapses into one refresh. Call the returned
// func to unsubscribe.
func (h *Hub) Subscribe(userID, topic string) (<-chan ChangeEvent, func()) {
	sub := &subscription{topic: topic, ch: make(chan ChangeEvent, 1)}

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*subscription]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[userID], sub)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			h.mu.Unlock()
		})
	}
}

// FanOut delivers event to matching local subscribers without blocking.
func (h *Hub) FanOut(event ChangeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[event.UserID] {
		if sub.topic != event.Topic {
			continue
		}
		select {
		case sub.ch <- event:
		default:
		}
	}
}

// Notify publishes a change. Publish failures are logged and the event is still
// delivered to this instance's subscribers.
func (h *Hub) Notify(ctx context.Context, userID, topic string) {
	event := ChangeEvent{UserID: userID, Topic: topic, Timestamp: time.Now().UTC()}
	if h.client == nil {
		h.FanOut(event)
		return
	}

	data, err := json.Marshal(event)
	if err == nil {
		err = h.client.Publish(ctx, userChannelPrefix+userID, data).Err()
	}
	if err != nil {
		logger.WithUser(userID).WithError(err).Warn("realtime: publish failed, delivering locally")
		h.FanOut(event)
	}
}

// Ready is closed once the first Redis subscription is confirmed.
func (h *Hub) Ready() <-chan struct{} {
	return h.ready
}

// Run listens on journal:user:* until ctx is cancelled, reconnecting with backoff.
func (h *Hub) Run(ctx context.Context) {
	if h.client == nil {
		logger.Log.Info("Redis client not initialized; live updates stay local to this instance")
		h.readyOnce.Do(func() { close(h.ready) })
		return
	}

	backoff := time.Second
	for ctx.Err() == nil {
		if err := h.listen(ctx, &backoff); err != nil && ctx.Err() == nil {
			logger.Log.WithError(err).Warn("realtime: subscriber error, reconnecting")
			select {
			case <-ctx.Done():
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > 30*time.Second {
				backoff = 30 * time.Second
			}
		}
	}
}

func (h *Hub) listen(ctx context.Context, backoff *time.Duration) error {
	pubsub := h.client.PSubscribe(ctx, userChannelPrefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	h.readyOnce.Do(func() { close(h.ready) })
	logger.Log.Infof("Realtime subscriber started (pattern: %s*)", userChannelPrefix)

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			return err
		}
		*backoff = time.Second

		var event ChangeEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			logger.Log.WithError(err).Warn("realtime: bad event payload")
			continue
		}
		if event.UserID == "" {
			event.UserID = strings.TrimPrefix(msg.Channel, userChannelPrefix)
		}
		h.FanOut(event)
	}
}

// Package realtime pushes field-level changes of content records to subscribers,
// in process and across API instances through Redis pub/sub.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	pkglogger "github.com/modvault/modvault-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const redisPubSubChannel = "content-changes"

// Change a committed update to some fields of one record
type Change struct {
	Table  string                 `json:"table"`
	ID     string                 `json:"id"`
	Fields map[string]interface{} `json:"fields"`
	At     time.Time              `json:"at"`
}

// Subscriber subscribe(table, id, onChange) -> unsubscribe
type Subscriber interface {
	Subscribe(table, id string, onChange func(Change)) (unsubscribe func())
}

// Publisher announces a committed change
type Publisher interface {
	Publish(ctx context.Context, change Change)
}

func topic(table, id string) string {
	return table + ":" + id
}

// Hub fans changes out to local subscribers and to other instances
type Hub struct {
	subs   map[string]map[uint64]func(Change)
	nextID uint64
	mu     sync.RWMutex

	broadcast chan Change

	instance    string
	redisClient *redis.Client
	ctx         context.Context
	cancel      context.CancelFunc
	done        chan struct{}
}

// NewHub creates a new Hub; redisClient may be nil for a single instance
func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		subs:        make(map[string]map[uint64]func(Change)),
		broadcast:   make(chan Change, 256),
		instance:    uuid.NewString(),
		redisClient: redisClient,
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
}

// Subscribe onChange runs on the hub goroutine and must not block
func (h *Hub) Subscribe(table, id string, onChange func(Change)) func() {
	key := topic(table, id)

	h.mu.Lock()
	h.nextID++
	subID := h.nextID
	if h.subs[key] == nil {
		h.subs[key] = make(map[uint64]func(Change))
	}
	h.subs[key][subID] = onChange
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if subs, ok := h.subs[key]; ok {
				delete(subs, subID)
				if len(subs) == 0 {
					delete(h.subs, key)
				}
			}
		})
	}
}

// Subscribers number of live subscriptions for a record
func (h *Hub) Subscribers(table, id string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic(table, id)])
}

// Publish delivers locally and publishes to Redis for the other instances
func (h *Hub) Publish(ctx context.Context, change Change) {
	if change.At.IsZero() {
		change.At = time.Now().UTC()
	}

	select {
	case h.broadcast <- change:
	case <-h.ctx.Done():
		return
	}

	if h.redisClient == nil {
		return
	}
	data, err := json.Marshal(redisMessage{Origin: h.instance, Change: change})
	if err != nil {
		return
	}
	if err := h.redisClient.Publish(ctx, redisPubSubChannel, data).Err(); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("table", change.Table).Str("id", change.ID).Msg("realtime publish failed")
	}
}

type redisMessage struct {
	Origin string `json:"origin"`
	Change Change `json:"change"`
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	defer close(h.done)

	if h.redisClient != nil {
		go h.subscribeRedis()
	}

	for {
		select {
		case change := <-h.broadcast:
			h.dispatch(change)
		case <-h.ctx.Done():
			return
		}
	}
}

func (h *Hub) dispatch(change Change) {
	h.mu.RLock()
	subs := h.subs[topic(change.Table, change.ID)]
	callbacks := make([]func(Change), 0, len(subs))
	for _, fn := range subs {
		callbacks = append(callbacks, fn)
	}
	h.mu.RUnlock()

	for _, fn := range callbacks {
		fn(change)
	}
}

// subscribeRedis listens for changes published by other instances
func (h *Hub) subscribeRedis() {
	pubsub := h.redisClient.Subscribe(h.ctx, redisPubSubChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var rm redisMessage
			if err := json.Unmarshal([]byte(msg.Payload), &rm); err != nil || rm.Origin == h.instance {
				continue
			}
			// Only local broadcast (don't re-publish to Redis)
			select {
			case h.broadcast <- rm.Change:
			case <-h.ctx.Done():
				return
			}
		case <-h.ctx.Done():
			return
		}
	}
}

// Stop shuts the hub down and waits for Run to return
func (h *Hub) Stop() {
	h.cancel()
	<-h.done
}

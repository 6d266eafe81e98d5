package stream

import (
	"context"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Hub fans speed updates out to websocket subscribers, keyed by bike id.
// Delivery is best-effort: a slow subscriber's buffer overflowing drops the
// message rather than back-pressuring ingestion.
type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	BikeID string
	Send   chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(bikeID string) *Client {
	client := &Client{
		BikeID: bikeID,
		Send:   make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[bikeID] == nil {
		h.clients[bikeID] = map[*Client]struct{}{}
	}
	h.clients[bikeID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if bikeClients, ok := h.clients[client.BikeID]; ok {
		delete(bikeClients, client)
		if len(bikeClients) == 0 {
			delete(h.clients, client.BikeID)
		}
	}
	close(client.Send)
}

// Broadcast routes one speed update to every subscriber of the bike. With
// redis configured the message goes through pub/sub so every instance's
// subscribers see it, and local delivery happens on the subscription side
// to keep each client at exactly one copy.
func (h *Hub) Broadcast(bikeID string, payload []byte) {
	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(bikeID), payload).Err()
		if err == nil {
			return
		}
		log.Printf("redis publish error: %v", err)
	}
	h.deliver(bikeID, payload)
}

func (h *Hub) deliver(bikeID string, payload []byte) {
	h.mu.RLock()
	clients := h.clients[bikeID]
	h.mu.RUnlock()

	for client := range clients {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "bikes:*:speed")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.deliver(bikeIDFromChannel(msg.Channel), []byte(msg.Payload))
	}
}

func redisChannel(bikeID string) string {
	return "bikes:" + bikeID + ":speed"
}

func bikeIDFromChannel(ch string) string {
	// bikes:{bike}:speed
	const prefix = "bikes:"
	const suffix = ":speed"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}

// Package events publishes cart changes to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/junaidrashid-git/cart-api/models"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

const (
	CartCreated     = "cart.created"
	CartUpdated     = "cart.updated"
	CartItemRemoved = "cart.item_removed"
	CartReplaced    = "cart.replaced"
	CartDeleted     = "cart.deleted"
)

type CartEvent struct {
	Type     string            `json:"type"`
	CartID   string            `json:"cartId"`
	User     string            `json:"user,omitempty"`
	Products []models.LineItem `json:"products,omitempty"`
	At       time.Time         `json:"at"`
}

// NewCartEvent snapshots cart into an event of the given type.
func NewCartEvent(eventType string, cart *models.Cart) CartEvent {
	return CartEvent{
		Type:     eventType,
		CartID:   cart.ID,
		User:     cart.User,
		Products: cart.Products,
		At:       time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event CartEvent) error
	Close() error
}

// Nop drops every event. It is used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, CartEvent) error { return nil }
func (Nop) Close() error { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka writes events keyed by cart id, so one cart's events stay ordered within a partition.
type Kafka struct {
	writer messageWriter
}

func NewKafka(brokers []string, topic string) *Kafka {
	return &Kafka{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}}
}

func (k *Kafka) Publish(ctx context.Context, event CartEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.CartID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	})
}

func (k *Kafka) Close() error { return k.writer.Close() }

// PublishBestEffort logs publish failures instead of returning them.
func PublishBestEffort(ctx context.Context, p Publisher, event CartEvent) {
	if err := p.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Str("type", event.Type).Str("cart", event.CartID).Msg("failed to publish cart event")
	}
}

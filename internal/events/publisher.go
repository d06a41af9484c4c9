package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/zinchenko-maksym/zinware-backend/internal/cart"
	"github.com/zinchenko-maksym/zinware-backend/internal/user"
)

// RabbitPublisher publishes storefront events to the topic exchange. Events
// describe state that is already committed; callers treat publish failures
// as log-and-continue.
type RabbitPublisher struct {
	ch        *amqp.Channel
	sequences SequenceRepository
}

func NewRabbitPublisher(conn *amqp.Connection, sequences SequenceRepository) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareEventsExchange(ch); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &RabbitPublisher{ch: ch, sequences: sequences}, nil
}

func (p *RabbitPublisher) Close() error {
	return p.ch.Close()
}

func (p *RabbitPublisher) PublishCartItemAdded(ctx context.Context, userID string, item *cart.Item, created bool) error {
	payload := CartItemAddedPayload{
		CartID:    item.CartID,
		UserID:    userID,
		ItemID:    item.ID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		Created:   created,
	}
	// Partition by cart so consumers see one cart's changes in order.
	return p.publish(ctx, CartItemAddedRoutingKey, "CartItemAdded", item.CartID, payload)
}

func (p *RabbitPublisher) PublishUserRegistered(ctx context.Context, u *user.User) error {
	payload := UserRegisteredPayload{UserID: u.ID, Email: u.Email}
	return p.publish(ctx, UserRegisteredRoutingKey, "UserRegistered", u.ID, payload)
}

func (p *RabbitPublisher) publish(ctx context.Context, routingKey, eventName, partitionKey string, payload any) error {
	seq, err := p.sequences.NextSequence(ctx, partitionKey)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	env := EventEnvelope{
		EventName:    eventName,
		EventVersion: 1,
		EventID:      uuid.NewString(),
		Producer:     producerName,
		PartitionKey: partitionKey,
		Sequence:     seq,
		OccurredAt:   time.Now().UTC(),
		Payload:      payload,
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", eventName, err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

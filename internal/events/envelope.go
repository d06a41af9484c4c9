package events

import "time"

// EventEnvelope wraps every published event with identity and ordering
// metadata. Sequence is monotonic per partition key so consumers can detect
// gaps and replays.
type EventEnvelope struct {
	EventName    string    `json:"eventName"`
	EventVersion int       `json:"eventVersion"`
	EventID      string    `json:"eventId"`
	Producer     string    `json:"producer"`
	PartitionKey string    `json:"partitionKey"`
	Sequence     int64     `json:"sequence"`
	OccurredAt   time.Time `json:"occurredAt"`
	Payload      any       `json:"payload"`
}

type CartItemAddedPayload struct {
	CartID    string `json:"cartId"`
	UserID    string `json:"userId"`
	ItemID    string `json:"itemId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Created   bool   `json:"created"`
}

type UserRegisteredPayload struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

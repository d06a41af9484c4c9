package catalog

import "time"

type Product struct {
	ID        string    `json:"productId"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"createdAt"`
}

package domain

import "time"

// Message is the minimal per-connection message record kept so the
// feedback loop can measure engagement. Delivery is handled elsewhere.
type Message struct {
	ID           int       `json:"id" db:"id"`
	ConnectionID int       `json:"connection_id" db:"connection_id"`
	SenderID     int       `json:"sender_id" db:"sender_id"`
	Content      string    `json:"content" db:"content"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

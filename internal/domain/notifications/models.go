package notifications

import "time"

// Event is what gets published for each delivered notification.
type Event struct {
	Template   string         `json:"template"`
	Recipient  string         `json:"recipient"`
	Subject    string         `json:"subject"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

type Delivery struct {
	ID        string    `json:"id"`
	Recipient string    `json:"recipient"`
	Template  string    `json:"template"`
	Subject   string    `json:"subject"`
	Channel   string    `json:"channel"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

package domain

import "time"

// RegistrationSession holds attendee identity between the registration and
// payment steps. It lives in the key-value store under a 30 minute TTL and
// is destroyed on timeout, successful payment, or explicit cancellation.
type RegistrationSession struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	TicketID  string    `json:"ticket_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

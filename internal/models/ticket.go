package models

import "time"

type Ticket struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	EventID     string     `json:"event_id"`
	HolderName  string     `json:"holder_name,omitempty"`
	HolderEmail string     `json:"holder_email,omitempty"`
	Credential  string     `json:"code"`
	CreatedAt   time.Time  `json:"created_at"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
}

func (t Ticket) CheckedIn() bool {
	return t.CheckedInAt != nil
}

// TicketDetails is a ticket together with the event it admits to.
type TicketDetails struct {
	Ticket
	Event TicketEvent `json:"event"`
}

type TicketEvent struct {
	Title    string    `json:"title"`
	Date     time.Time `json:"date"`
	Location string    `json:"location,omitempty"`
}

func NewTicketDetails(ticket Ticket, event Event) TicketDetails {
	return TicketDetails{
		Ticket: ticket,
		Event: TicketEvent{
			Title:    event.Title,
			Date:     event.Date,
			Location: event.Location,
		},
	}
}

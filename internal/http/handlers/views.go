// README: Response DTOs shared across handlers.
package handlers

import (
	"time"

	"busline/internal/modules/conductor"
	"busline/internal/modules/ticket"
)

type ticketDTO struct {
	ID          string    `json:"id"`
	BusCode     string    `json:"busCode"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Passengers  int       `json:"passengers"`
	FareRupees  float64   `json:"fareTotal"`
	Status      string    `json:"status"`
	BookedAt    time.Time `json:"bookedAt"`
}

func toTicketDTO(r ticket.Record) ticketDTO {
	return ticketDTO{
		ID:          string(r.ID),
		BusCode:     r.BusCode,
		Source:      r.Source,
		Destination: r.Destination,
		Passengers:  r.PassengerCount,
		FareRupees:  float64(r.FareTotal.Amount) / 100,
		Status:      string(r.Status),
		BookedAt:    r.BookedAt,
	}
}

type sessionView struct {
	BusCode      string      `json:"busCode"`
	Tickets      []ticketDTO `json:"tickets"`
	Destinations []string    `json:"destinations"`
	Selected     string      `json:"selectedDestination"`
	LastError    string      `json:"lastError,omitempty"`
}

func ticketsView(v conductor.View) sessionView {
	out := sessionView{
		BusCode:      v.BusCode,
		Tickets:      make([]ticketDTO, 0, len(v.Tickets)),
		Destinations: v.Destinations,
		Selected:     v.Selected,
		LastError:    v.LastError,
	}
	for _, r := range v.Tickets {
		out.Tickets = append(out.Tickets, toTicketDTO(r))
	}
	return out
}

// README: Lost & found report entity.
package lostfound

import (
	"time"

	"busline/internal/types"
)

type Status string

const (
	// StatusMissing: a passenger reported the item lost.
	StatusMissing Status = "missing"
	// StatusFound: a conductor handed the item in, or a missing report
	// was resolved against a handed-in item.
	StatusFound Status = "found"
)

type Report struct {
	ID          types.ID  `json:"id"`
	BusCode     string    `json:"busCode"`
	Category    string    `json:"category"` // "Bag", "Phone", ...
	Description string    `json:"description"`
	Destination string    `json:"destination,omitempty"`
	ReportedBy  string    `json:"reportedBy,omitempty"`
	Status      Status    `json:"status"`
	FoundBy     string    `json:"foundBy,omitempty"`
	ReportedAt  time.Time `json:"reportedAt"`
}

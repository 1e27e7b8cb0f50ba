// README: QR payload codec; JSON text embedded in the e-ticket QR symbol.
package ticket

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Payload is the point-in-time snapshot carried by a QR symbol. TicketID is
// the preferred matching key; busCode/destination/passengers exist so a scan
// can still resolve when the listing endpoint omits identifiers.
type Payload struct {
	TicketID    string `json:"ticketId,omitempty"`
	BusCode     string `json:"busCode,omitempty"`
	Destination string `json:"destination,omitempty"`
	Passengers  int    `json:"passengers,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
	UserID      string `json:"userId,omitempty"`
}

var ErrMalformedPayload = errors.New("malformed qr payload")

// EncodePayload serializes the matching fields of a ticket. Two encodings of
// the same ticket decode to equal matching fields; only the timestamp moves.
func EncodePayload(r *Record, issuedAt time.Time, userID string) (string, error) {
	if r == nil {
		return "", ErrMalformedPayload
	}
	p := Payload{
		TicketID:    string(r.ID),
		BusCode:     r.BusCode,
		Destination: r.Destination,
		Passengers:  r.PassengerCount,
		Timestamp:   issuedAt.UTC().Format(time.RFC3339),
		UserID:      userID,
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	return string(b), nil
}

// DecodePayload parses scanned text. Text that is not a JSON object, or that
// carries neither a ticketId nor the busCode+destination fallback key, cannot
// be matched against anything and is rejected as malformed.
func DecodePayload(text string) (Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if p.TicketID == "" && (p.BusCode == "" || p.Destination == "") {
		return Payload{}, fmt.Errorf("%w: no matchable fields", ErrMalformedPayload)
	}
	return p, nil
}

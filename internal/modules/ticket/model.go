// README: Ticket record and check-in status definitions.
package ticket

import (
	"errors"
	"strings"
	"time"

	"busline/internal/types"
)

type Status string

const (
	StatusBooked    Status = "booked"
	StatusValidated Status = "validated"
	StatusExpired   Status = "expired"
)

type Record struct {
	ID             types.ID
	BusCode        string
	Source         string
	Destination    string
	PassengerCount int
	FareTotal      types.Money
	Status         Status
	BookedAt       time.Time
}

// AllowedTransitions represents the check-in lifecycle as code. Validated has
// no outgoing edge: a rider who already boarded is not expired retroactively
// when the bus reaches their destination.
var AllowedTransitions = map[Status][]Status{
	StatusBooked: {StatusValidated, StatusExpired},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

var (
	ErrAlreadyValidated = errors.New("ticket already validated")
	ErrExpired          = errors.New("ticket expired")
)

// ApplyScan moves a booked ticket to validated. Rejections report which
// terminal state blocked the scan and leave the record untouched.
func ApplyScan(r *Record) error {
	switch r.Status {
	case StatusValidated:
		return ErrAlreadyValidated
	case StatusExpired:
		return ErrExpired
	}
	if !CanTransition(r.Status, StatusValidated) {
		return ErrExpired
	}
	r.Status = StatusValidated
	return nil
}

// ExpireForDestination expires every booked ticket on the bus for the given
// destination and returns how many changed. Validated tickets are untouched.
func ExpireForDestination(set []*Record, busCode, destination string) int {
	n := 0
	for _, r := range set {
		if r.BusCode != busCode || !SameDestination(r.Destination, destination) {
			continue
		}
		if r.Status != StatusBooked {
			continue
		}
		r.Status = StatusExpired
		n++
	}
	return n
}

// SameDestination compares destinations case-insensitively, ignoring
// surrounding whitespace. Payloads come from hand-entered route fields.
func SameDestination(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

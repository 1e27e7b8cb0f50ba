// README: Resolves a decoded QR payload against a bus manifest and classifies the result.
package ticket

import "strings"

type OutcomeKind string

const (
	OutcomeMatched          OutcomeKind = "matched"
	OutcomeNotFound         OutcomeKind = "not_found"
	OutcomeWrongBus         OutcomeKind = "wrong_bus"
	OutcomeAlreadyValidated OutcomeKind = "already_validated"
	OutcomeExpired          OutcomeKind = "expired"
	OutcomeMalformed        OutcomeKind = "malformed_payload"
)

// ScanOutcome is created per scan event and consumed immediately by the
// conductor session. Ticket is set only for OutcomeMatched.
type ScanOutcome struct {
	Kind   OutcomeKind
	Ticket *Record
}

// Match runs the two-tier resolution: exact ticket ID first, then the
// busCode+destination+passengerCount fallback. An ID miss falls through to
// the fallback rather than failing, since the listing endpoint may omit
// identifiers. A payload stamped for another bus never matches.
func Match(p Payload, activeBusCode string, set []*Record) ScanOutcome {
	if p.BusCode != "" && strings.TrimSpace(p.BusCode) != strings.TrimSpace(activeBusCode) {
		return ScanOutcome{Kind: OutcomeWrongBus}
	}

	var found *Record
	if p.TicketID != "" {
		for _, r := range set {
			if string(r.ID) != "" && string(r.ID) == p.TicketID {
				found = r
				break
			}
		}
	}
	if found == nil {
		for _, r := range set {
			if r.BusCode == p.BusCode &&
				SameDestination(r.Destination, p.Destination) &&
				r.PassengerCount == p.Passengers {
				found = r
				break
			}
		}
	}
	if found == nil {
		return ScanOutcome{Kind: OutcomeNotFound}
	}

	switch found.Status {
	case StatusValidated:
		return ScanOutcome{Kind: OutcomeAlreadyValidated, Ticket: nil}
	case StatusExpired:
		return ScanOutcome{Kind: OutcomeExpired, Ticket: nil}
	}
	return ScanOutcome{Kind: OutcomeMatched, Ticket: found}
}

// README: Conductor session; owns the active bus code, polls the manifest, and sequences scans.
package conductor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"busline/internal/modules/ticket"
	"busline/internal/types"
)

type TicketService interface {
	List(ctx context.Context, busCode string) ([]*ticket.Record, error)
	Expire(ctx context.Context, busCode, destination string) error
	Validate(ctx context.Context, id types.ID) error
}

// EventJournal records what happened on the bus. Journal failures never fail
// the operation they describe.
type EventJournal interface {
	Append(ctx context.Context, e Event) error
}

type Event struct {
	BusCode     string
	Kind        string
	TicketID    types.ID
	Destination string
	CreatedAt   time.Time
}

var (
	ErrNoBusCode          = errors.New("no active bus code")
	ErrUnknownDestination = errors.New("destination not on the current manifest")
)

// Session is the single writer of its ticket set. Every mutation goes
// through its methods; remote calls happen outside the lock and the set is
// replaced whole on success, never merged in place.
type Session struct {
	svc          TicketService
	journal      EventJournal
	pollInterval time.Duration

	mu           sync.Mutex
	busCode      string
	epoch        uint64
	tickets      []*ticket.Record
	destinations []string
	selected     string
	lastErr      error
}

func NewSession(svc TicketService, journal EventJournal, pollInterval time.Duration) *Session {
	if pollInterval <= 0 {
		pollInterval = 15 * time.Second
	}
	return &Session{svc: svc, journal: journal, pollInterval: pollInterval}
}

// SetBusCode replaces the active code and refreshes immediately. Bumping the
// epoch invalidates any in-flight refresh for the previous code; its late
// response is discarded on arrival instead of overwriting the new manifest.
func (s *Session) SetBusCode(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	s.mu.Lock()
	s.busCode = code
	s.epoch++
	s.tickets = nil
	s.destinations = nil
	s.selected = ""
	s.lastErr = nil
	s.mu.Unlock()

	if code == "" {
		return ErrNoBusCode
	}
	return s.Refresh(ctx)
}

// Refresh fetches the current manifest. A transport failure keeps the
// last-known set so the operator view does not flash empty on a blip.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	code, epoch := s.busCode, s.epoch
	s.mu.Unlock()
	if code == "" {
		return ErrNoBusCode
	}

	records, err := s.svc.List(ctx, code)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		// response for a superseded bus code
		return nil
	}
	if err != nil {
		s.lastErr = err
		return err
	}
	s.lastErr = nil
	s.tickets = records
	s.recomputeDestinationsLocked()
	return nil
}

// HandleScan decodes, matches, and on a match validates locally and
// remotely. Non-matched classifications are outcomes, not errors; the error
// return is reserved for transport failures on the follow-up remote call.
func (s *Session) HandleScan(ctx context.Context, raw string) (ticket.ScanOutcome, error) {
	s.mu.Lock()
	code := s.busCode
	s.mu.Unlock()
	if code == "" {
		return ticket.ScanOutcome{}, ErrNoBusCode
	}

	payload, err := ticket.DecodePayload(raw)
	if err != nil {
		out := ticket.ScanOutcome{Kind: ticket.OutcomeMalformed}
		s.record(ctx, out, "")
		return out, nil
	}

	s.mu.Lock()
	out := ticket.Match(payload, s.busCode, s.tickets)
	if out.Kind == ticket.OutcomeMatched {
		// matcher only yields Matched for booked tickets
		_ = ticket.ApplyScan(out.Ticket)
	}
	s.mu.Unlock()

	if out.Kind != ticket.OutcomeMatched {
		s.record(ctx, out, "")
		return out, nil
	}
	s.record(ctx, out, out.Ticket.Destination)

	// A fallback-matched record from an id-less listing cannot be addressed
	// remotely; the local state holds until the next poll reconciles it.
	if out.Ticket.ID != "" {
		if err := s.svc.Validate(ctx, out.Ticket.ID); err != nil {
			s.mu.Lock()
			s.lastErr = err
			s.mu.Unlock()
			return out, err
		}
	}
	_ = s.Refresh(ctx)
	return out, nil
}

// MarkDestinationArrived expires every still-booked ticket for the
// destination in one remote call. On failure the prior states stand.
func (s *Session) MarkDestinationArrived(ctx context.Context, destination string) error {
	s.mu.Lock()
	code := s.busCode
	known := s.hasDestinationLocked(destination)
	s.mu.Unlock()

	if code == "" {
		return ErrNoBusCode
	}
	if !known {
		return ErrUnknownDestination
	}

	if err := s.svc.Expire(ctx, code, destination); err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		return err
	}
	if s.journal != nil {
		_ = s.journal.Append(ctx, Event{
			BusCode:     code,
			Kind:        "destination_arrived",
			Destination: destination,
			CreatedAt:   time.Now(),
		})
	}
	_ = s.Refresh(ctx)
	return nil
}

// SelectDestination pins the operator's working destination. It must be on
// the current manifest; a later refresh that drops it resets the selection.
func (s *Session) SelectDestination(destination string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasDestinationLocked(destination) {
		return ErrUnknownDestination
	}
	s.selected = destination
	return nil
}

// Run re-polls on a fixed interval until the context is cancelled. The timer
// refresh carries no ordering guarantee relative to operator actions.
func (s *Session) Run(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			code := s.busCode
			s.mu.Unlock()
			if code == "" {
				continue
			}
			_ = s.Refresh(ctx)
		}
	}
}

// View is a copy of the session state for the HTTP layer.
type View struct {
	BusCode      string
	Tickets      []ticket.Record
	Destinations []string
	Selected     string
	LastError    string
}

func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		BusCode:      s.busCode,
		Destinations: append([]string(nil), s.destinations...),
		Selected:     s.selected,
	}
	for _, r := range s.tickets {
		v.Tickets = append(v.Tickets, *r)
	}
	if s.lastErr != nil {
		v.LastError = s.lastErr.Error()
	}
	return v
}

func (s *Session) recomputeDestinationsLocked() {
	var dests []string
	for _, r := range s.tickets {
		dup := false
		for _, d := range dests {
			if ticket.SameDestination(d, r.Destination) {
				dup = true
				break
			}
		}
		if !dup && strings.TrimSpace(r.Destination) != "" {
			dests = append(dests, strings.TrimSpace(r.Destination))
		}
	}
	s.destinations = dests

	if s.selected != "" && !s.hasDestinationLocked(s.selected) {
		s.selected = ""
	}
	if s.selected == "" && len(dests) > 0 {
		s.selected = dests[0]
	}
}

func (s *Session) hasDestinationLocked(destination string) bool {
	for _, d := range s.destinations {
		if ticket.SameDestination(d, destination) {
			return true
		}
	}
	return false
}

func (s *Session) record(ctx context.Context, out ticket.ScanOutcome, destination string) {
	if s.journal == nil {
		return
	}
	e := Event{
		BusCode:     s.activeBusCode(),
		Kind:        "scan_" + string(out.Kind),
		Destination: destination,
		CreatedAt:   time.Now(),
	}
	if out.Ticket != nil {
		e.TicketID = out.Ticket.ID
	}
	_ = s.journal.Append(ctx, e)
}

func (s *Session) activeBusCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busCode
}

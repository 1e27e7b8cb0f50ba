// README: Session tests with a scripted ticket service (polling, scans, bulk expiry, stale discard).
package conductor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"busline/internal/modules/ticket"
	"busline/internal/types"
)

// fakeService is a scripted remote: an in-memory manifest per bus code,
// switchable failure mode, and call recording.
type fakeService struct {
	mu        sync.Mutex
	manifests map[string][]*ticket.Record
	failList  error
	failBulk  error
	validated []types.ID
	expired   []string // "busCode|destination"
	listGate  chan struct{} // when set, List blocks until the gate closes
}

func newFakeService() *fakeService {
	return &fakeService{manifests: map[string][]*ticket.Record{}}
}

func (f *fakeService) List(ctx context.Context, busCode string) ([]*ticket.Record, error) {
	f.mu.Lock()
	gate := f.listGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList != nil {
		return nil, f.failList
	}
	src := f.manifests[busCode]
	out := make([]*ticket.Record, len(src))
	for i, r := range src {
		cp := *r
		out[i] = &cp
	}
	return out, nil
}

func (f *fakeService) Expire(ctx context.Context, busCode, destination string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failBulk != nil {
		return f.failBulk
	}
	f.expired = append(f.expired, busCode+"|"+destination)
	ticket.ExpireForDestination(f.manifests[busCode], busCode, destination)
	return nil
}

func (f *fakeService) Validate(ctx context.Context, id types.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validated = append(f.validated, id)
	for _, set := range f.manifests {
		for _, r := range set {
			if r.ID == id {
				r.Status = ticket.StatusValidated
			}
		}
	}
	return nil
}

type memJournal struct {
	mu     sync.Mutex
	events []Event
}

func (j *memJournal) Append(ctx context.Context, e Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, e)
	return nil
}

func (j *memJournal) kinds() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, len(j.events))
	for i, e := range j.events {
		out[i] = e.Kind
	}
	return out
}

func seed(f *fakeService) {
	f.manifests["038038"] = []*ticket.Record{
		{ID: "T1", BusCode: "038038", Destination: "Vijayawada", PassengerCount: 1, Status: ticket.StatusBooked},
		{ID: "T2", BusCode: "038038", Destination: "Vijayawada", PassengerCount: 2, Status: ticket.StatusBooked},
		{ID: "T3", BusCode: "038038", Destination: "Guntur", PassengerCount: 1, Status: ticket.StatusBooked},
	}
	f.manifests["777777"] = []*ticket.Record{
		{ID: "X1", BusCode: "777777", Destination: "Nellore", PassengerCount: 1, Status: ticket.StatusBooked},
	}
}

func TestSetBusCodeRefreshesAndDerivesDestinations(t *testing.T) {
	f := newFakeService()
	seed(f)
	s := NewSession(f, &memJournal{}, time.Second)

	if err := s.SetBusCode(context.Background(), "038038"); err != nil {
		t.Fatalf("set bus code: %v", err)
	}
	v := s.Snapshot()
	if len(v.Tickets) != 3 {
		t.Fatalf("tickets = %d, want 3", len(v.Tickets))
	}
	if len(v.Destinations) != 2 || v.Destinations[0] != "Vijayawada" || v.Destinations[1] != "Guntur" {
		t.Fatalf("destinations = %v", v.Destinations)
	}
	if v.Selected != "Vijayawada" {
		t.Fatalf("default selection = %q", v.Selected)
	}
}

func TestSetBusCodeEmptyIsConfigurationError(t *testing.T) {
	s := NewSession(newFakeService(), nil, time.Second)
	if err := s.SetBusCode(context.Background(), "  "); !errors.Is(err, ErrNoBusCode) {
		t.Fatalf("err = %v, want ErrNoBusCode", err)
	}
	if err := s.Refresh(context.Background()); !errors.Is(err, ErrNoBusCode) {
		t.Fatalf("refresh err = %v, want ErrNoBusCode", err)
	}
}

func TestRefreshFailureKeepsLastKnownSet(t *testing.T) {
	f := newFakeService()
	seed(f)
	s := NewSession(f, nil, time.Second)
	if err := s.SetBusCode(context.Background(), "038038"); err != nil {
		t.Fatal(err)
	}

	f.mu.Lock()
	f.failList = errors.New("boom")
	f.mu.Unlock()

	if err := s.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	v := s.Snapshot()
	if len(v.Tickets) != 3 {
		t.Fatalf("set cleared on transient failure: %d tickets", len(v.Tickets))
	}
	if v.LastError == "" {
		t.Fatal("error state not surfaced")
	}

	f.mu.Lock()
	f.failList = nil
	f.mu.Unlock()
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if v := s.Snapshot(); v.LastError != "" {
		t.Fatalf("error state not cleared: %q", v.LastError)
	}
}

func TestStaleRefreshDiscardedAfterBusCodeChange(t *testing.T) {
	f := newFakeService()
	seed(f)
	s := NewSession(f, nil, time.Second)
	if err := s.SetBusCode(context.Background(), "038038"); err != nil {
		t.Fatal(err)
	}

	// hold a refresh for the old code in flight
	gate := make(chan struct{})
	f.mu.Lock()
	f.listGate = gate
	f.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- s.Refresh(context.Background()) }()

	// switch buses while the old refresh is suspended; the switch's own
	// refresh must not block on the gate, so clear it first
	time.Sleep(10 * time.Millisecond)
	f.mu.Lock()
	f.listGate = nil
	f.mu.Unlock()
	if err := s.SetBusCode(context.Background(), "777777"); err != nil {
		t.Fatal(err)
	}

	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("stale refresh returned error: %v", err)
	}

	v := s.Snapshot()
	if v.BusCode != "777777" {
		t.Fatalf("bus code = %q", v.BusCode)
	}
	if len(v.Tickets) != 1 || v.Tickets[0].ID != "X1" {
		t.Fatalf("late response for stale code overwrote the manifest: %+v", v.Tickets)
	}
}

func TestHandleScanMatched(t *testing.T) {
	f := newFakeService()
	seed(f)
	j := &memJournal{}
	s := NewSession(f, j, time.Second)
	if err := s.SetBusCode(context.Background(), "038038"); err != nil {
		t.Fatal(err)
	}

	out, err := s.HandleScan(context.Background(), `{"ticketId":"T1","busCode":"038038"}`)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if out.Kind != ticket.OutcomeMatched {
		t.Fatalf("kind = %s", out.Kind)
	}
	if len(f.validated) != 1 || f.validated[0] != "T1" {
		t.Fatalf("remote validate calls = %v", f.validated)
	}

	// the post-scan refresh pulled the validated status back
	v := s.Snapshot()
	for _, r := range v.Tickets {
		if r.ID == "T1" && r.Status != ticket.StatusValidated {
			t.Fatalf("T1 status after refresh = %s", r.Status)
		}
	}

	// identical second scan is an idempotent rejection
	out, err = s.HandleScan(context.Background(), `{"ticketId":"T1","busCode":"038038"}`)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if out.Kind != ticket.OutcomeAlreadyValidated {
		t.Fatalf("second scan kind = %s", out.Kind)
	}
	if len(f.validated) != 1 {
		t.Fatalf("rejected scan reached the remote: %v", f.validated)
	}

	kinds := j.kinds()
	if len(kinds) != 2 || kinds[0] != "scan_matched" || kinds[1] != "scan_already_validated" {
		t.Fatalf("journal = %v", kinds)
	}
}

func TestHandleScanClassifications(t *testing.T) {
	f := newFakeService()
	seed(f)
	s := NewSession(f, nil, time.Second)
	if err := s.SetBusCode(context.Background(), "038038"); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name string
		raw  string
		want ticket.OutcomeKind
	}{
		{"wrong bus", `{"ticketId":"T1","busCode":"999999"}`, ticket.OutcomeWrongBus},
		{"not found", `{"ticketId":"ZZ","busCode":"038038"}`, ticket.OutcomeNotFound},
		{"fallback match", `{"busCode":"038038","destination":"vijayawada ","passengers":2}`, ticket.OutcomeMatched},
		{"malformed", `not a payload`, ticket.OutcomeMalformed},
		{"malformed no keys", `{"timestamp":"2024-06-15T10:30:00Z"}`, ticket.OutcomeMalformed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := s.HandleScan(context.Background(), tc.raw)
			if err != nil {
				t.Fatalf("scan: %v", err)
			}
			if out.Kind != tc.want {
				t.Errorf("kind = %s, want %s", out.Kind, tc.want)
			}
		})
	}
}

func TestMarkDestinationArrived(t *testing.T) {
	f := newFakeService()
	seed(f)
	j := &memJournal{}
	s := NewSession(f, j, time.Second)
	if err := s.SetBusCode(context.Background(), "038038"); err != nil {
		t.Fatal(err)
	}

	// validate T1 first; arrival must not touch it
	if _, err := s.HandleScan(context.Background(), `{"ticketId":"T1","busCode":"038038"}`); err != nil {
		t.Fatal(err)
	}

	if err := s.MarkDestinationArrived(context.Background(), "Vijayawada"); err != nil {
		t.Fatalf("arrived: %v", err)
	}
	if len(f.expired) != 1 || f.expired[0] != "038038|Vijayawada" {
		t.Fatalf("bulk expire calls = %v", f.expired)
	}

	v := s.Snapshot()
	got := map[string]ticket.Status{}
	for _, r := range v.Tickets {
		got[string(r.ID)] = r.Status
	}
	if got["T1"] != ticket.StatusValidated {
		t.Errorf("T1 = %s, want validated kept", got["T1"])
	}
	if got["T2"] != ticket.StatusExpired {
		t.Errorf("T2 = %s, want expired", got["T2"])
	}
	if got["T3"] != ticket.StatusBooked {
		t.Errorf("T3 (other destination) = %s, want booked", got["T3"])
	}
}

func TestMarkDestinationArrivedValidation(t *testing.T) {
	f := newFakeService()
	seed(f)
	s := NewSession(f, nil, time.Second)

	if err := s.MarkDestinationArrived(context.Background(), "Vijayawada"); !errors.Is(err, ErrNoBusCode) {
		t.Fatalf("no bus code err = %v", err)
	}

	if err := s.SetBusCode(context.Background(), "038038"); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkDestinationArrived(context.Background(), "Mumbai"); !errors.Is(err, ErrUnknownDestination) {
		t.Fatalf("unknown destination err = %v", err)
	}
	if len(f.expired) != 0 {
		t.Fatalf("rejected arrival reached the remote: %v", f.expired)
	}
}

func TestMarkDestinationArrivedFailureLeavesStateUntouched(t *testing.T) {
	f := newFakeService()
	seed(f)
	s := NewSession(f, nil, time.Second)
	if err := s.SetBusCode(context.Background(), "038038"); err != nil {
		t.Fatal(err)
	}

	f.mu.Lock()
	f.failBulk = errors.New("gateway timeout")
	f.mu.Unlock()

	if err := s.MarkDestinationArrived(context.Background(), "Vijayawada"); err == nil {
		t.Fatal("expected error")
	}
	v := s.Snapshot()
	for _, r := range v.Tickets {
		if r.Status != ticket.StatusBooked {
			t.Errorf("ticket %s mutated to %s after failed bulk expiry", r.ID, r.Status)
		}
	}
}

func TestSelectionResetWhenDestinationDisappears(t *testing.T) {
	f := newFakeService()
	seed(f)
	s := NewSession(f, nil, time.Second)
	if err := s.SetBusCode(context.Background(), "038038"); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectDestination("Guntur"); err != nil {
		t.Fatal(err)
	}

	// all Guntur tickets drop off the manifest
	f.mu.Lock()
	f.manifests["038038"] = f.manifests["038038"][:2]
	f.mu.Unlock()
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	v := s.Snapshot()
	if v.Selected != "Vijayawada" {
		t.Fatalf("selection = %q, want reset to first remaining destination", v.Selected)
	}
}

func TestRunPollsUntilCancelled(t *testing.T) {
	f := newFakeService()
	seed(f)
	s := NewSession(f, nil, 5*time.Millisecond)
	if err := s.SetBusCode(context.Background(), "038038"); err != nil {
		t.Fatal(err)
	}

	f.mu.Lock()
	f.manifests["038038"] = append(f.manifests["038038"], &ticket.Record{
		ID: "T4", BusCode: "038038", Destination: "Vijayawada", PassengerCount: 1, Status: ticket.StatusBooked,
	})
	f.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	deadline := time.After(time.Second)
	for {
		if len(s.Snapshot().Tickets) == 4 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("poller never picked up the new ticket")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

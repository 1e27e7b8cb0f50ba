// README: State machine tests (transition table, scan application, bulk expiry).
package ticket

import (
	"errors"
	"testing"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusBooked, StatusValidated, true},
		{StatusBooked, StatusExpired, true},
		// validated is terminal for check-in purposes
		{StatusValidated, StatusExpired, false},
		{StatusValidated, StatusBooked, false},
		{StatusExpired, StatusBooked, false},
		{StatusExpired, StatusValidated, false},
		{StatusBooked, StatusBooked, false},
	}
	for _, tc := range cases {
		got := CanTransition(tc.from, tc.to)
		if got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestApplyScan(t *testing.T) {
	r := &Record{ID: "T1", BusCode: "038038", Destination: "Vijayawada", Status: StatusBooked}
	if err := ApplyScan(r); err != nil {
		t.Fatalf("scan booked: %v", err)
	}
	if r.Status != StatusValidated {
		t.Fatalf("status = %s, want %s", r.Status, StatusValidated)
	}

	// second scan is an idempotent rejection, status unchanged
	if err := ApplyScan(r); !errors.Is(err, ErrAlreadyValidated) {
		t.Fatalf("second scan err = %v, want ErrAlreadyValidated", err)
	}
	if r.Status != StatusValidated {
		t.Fatalf("status after rejected scan = %s, want %s", r.Status, StatusValidated)
	}

	e := &Record{ID: "T2", Status: StatusExpired}
	if err := ApplyScan(e); !errors.Is(err, ErrExpired) {
		t.Fatalf("scan expired err = %v, want ErrExpired", err)
	}
	if e.Status != StatusExpired {
		t.Fatalf("expired record mutated to %s", e.Status)
	}
}

func TestExpireForDestination(t *testing.T) {
	set := []*Record{
		{ID: "T1", BusCode: "038038", Destination: "Vijayawada", Status: StatusBooked},
		{ID: "T2", BusCode: "038038", Destination: "vijayawada ", Status: StatusBooked},
		{ID: "T3", BusCode: "038038", Destination: "Vijayawada", Status: StatusValidated},
		{ID: "T4", BusCode: "038038", Destination: "Guntur", Status: StatusBooked},
		{ID: "T5", BusCode: "999999", Destination: "Vijayawada", Status: StatusBooked},
	}

	n := ExpireForDestination(set, "038038", "Vijayawada")
	if n != 2 {
		t.Fatalf("expired %d tickets, want 2", n)
	}

	wantStatus := map[string]Status{
		"T1": StatusExpired,
		"T2": StatusExpired,
		"T3": StatusValidated, // boarded rider is not retro-expired
		"T4": StatusBooked,
		"T5": StatusBooked,
	}
	for _, r := range set {
		if r.Status != wantStatus[string(r.ID)] {
			t.Errorf("ticket %s status = %s, want %s", r.ID, r.Status, wantStatus[string(r.ID)])
		}
	}
}

func TestSameDestination(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"Vijayawada", "vijayawada", true},
		{"Vijayawada ", "vijayawada", true},
		{" GUNTUR", "guntur ", true},
		{"Guntur", "Vijayawada", false},
		{"", "", true},
	}
	for _, tc := range cases {
		if got := SameDestination(tc.a, tc.b); got != tc.want {
			t.Errorf("SameDestination(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

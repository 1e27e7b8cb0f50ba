// README: Booking tests with fake directory and remote (validation, fare, QR payload).
package booking

import (
	"context"
	"errors"
	"testing"

	"busline/internal/modules/fare"
	"busline/internal/modules/fleet"
	"busline/internal/modules/ticket"
	"busline/internal/ticketsvc"
	"busline/internal/types"
)

type fakeDirectory struct {
	bus *fleet.Bus
}

func (f fakeDirectory) Track(ctx context.Context, busCode string) (*fleet.Bus, error) {
	if f.bus == nil || f.bus.BusCode != busCode {
		return nil, fleet.ErrNotFound
	}
	return f.bus, nil
}

type fakeBooker struct {
	got  ticketsvc.BookingRequest
	fail error
}

func (f *fakeBooker) Book(ctx context.Context, req ticketsvc.BookingRequest) (*ticket.Record, error) {
	f.got = req
	if f.fail != nil {
		return nil, f.fail
	}
	return &ticket.Record{
		ID:             "srv-1",
		BusCode:        req.BusCode,
		Source:         req.Source,
		Destination:    req.Destination,
		PassengerCount: len(req.Passengers),
		FareTotal:      types.Rupees(int64(req.TotalFare * 100)),
		Status:         ticket.StatusBooked,
	}, nil
}

func testBus() *fleet.Bus {
	return &fleet.Bus{
		BusNo:       "AP16E4420",
		BusCode:     "038038",
		Source:      "Hyderabad",
		Destination: "Guntur",
		BusType:     "Express",
		DistanceKm:  280,
		FarePerKm:   types.Rupees(100),
	}
}

type fixedDistance float64

func (f fixedDistance) DistanceKm(ctx context.Context, origin, destination string) (float64, error) {
	return float64(f), nil
}

func newService(remote Booker) *Service {
	return NewService(fakeDirectory{bus: testBus()}, fare.NewService(fixedDistance(280)), remote)
}

func TestBookHappyPath(t *testing.T) {
	remote := &fakeBooker{}
	svc := newService(remote)

	conf, err := svc.Book(context.Background(), Command{
		BusCode:     "038038",
		Source:      "Hyderabad",
		Destination: "Guntur",
		Passengers:  []Passenger{{FullName: "Asha", Age: 28}, {FullName: "Ravi", Age: 61}},
		UserID:      "user-1",
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	// 280 km * 100 paise = 28000 per head; senior pays half
	if remote.got.TotalFare != 420.0 {
		t.Errorf("total fare = %f rupees, want 420", remote.got.TotalFare)
	}
	if remote.got.Kms != 280 {
		t.Errorf("kms = %f", remote.got.Kms)
	}
	if remote.got.Status != "booked" {
		t.Errorf("status = %q", remote.got.Status)
	}
	if conf.Ticket.ID != "srv-1" {
		t.Errorf("ticket id = %q", conf.Ticket.ID)
	}

	// the issued QR payload must decode back to the created ticket
	p, err := ticket.DecodePayload(conf.QRText)
	if err != nil {
		t.Fatalf("decode issued payload: %v", err)
	}
	if p.TicketID != "srv-1" || p.BusCode != "038038" || p.Passengers != 2 {
		t.Errorf("payload = %+v", p)
	}
	if p.UserID != "user-1" {
		t.Errorf("payload user = %q", p.UserID)
	}
}

func TestBookValidation(t *testing.T) {
	svc := newService(&fakeBooker{})
	base := Command{
		BusCode:     "038038",
		Source:      "Hyderabad",
		Destination: "Guntur",
		Passengers:  []Passenger{{FullName: "Asha", Age: 28}},
	}

	cases := []struct {
		name   string
		mutate func(*Command)
	}{
		{"missing bus code", func(c *Command) { c.BusCode = " " }},
		{"missing source", func(c *Command) { c.Source = "" }},
		{"missing destination", func(c *Command) { c.Destination = "" }},
		{"no passengers", func(c *Command) { c.Passengers = nil }},
		{"unnamed passenger", func(c *Command) { c.Passengers = []Passenger{{Age: 20}} }},
		{"zero age", func(c *Command) { c.Passengers = []Passenger{{FullName: "X", Age: 0}} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := base
			tc.mutate(&cmd)
			if _, err := svc.Book(context.Background(), cmd); !errors.Is(err, ErrBadRequest) {
				t.Errorf("err = %v, want ErrBadRequest", err)
			}
		})
	}
}

func TestBookUnknownBus(t *testing.T) {
	svc := newService(&fakeBooker{})
	_, err := svc.Book(context.Background(), Command{
		BusCode:     "999999",
		Source:      "Hyderabad",
		Destination: "Guntur",
		Passengers:  []Passenger{{FullName: "Asha", Age: 28}},
	})
	if !errors.Is(err, ErrNoSuchBus) {
		t.Fatalf("err = %v, want ErrNoSuchBus", err)
	}
}

func TestBookRemoteFailurePropagates(t *testing.T) {
	remote := &fakeBooker{fail: ticketsvc.ErrTransport}
	svc := newService(remote)
	_, err := svc.Book(context.Background(), Command{
		BusCode:     "038038",
		Source:      "Hyderabad",
		Destination: "Guntur",
		Passengers:  []Passenger{{FullName: "Asha", Age: 28}},
	})
	if !errors.Is(err, ticketsvc.ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
}

func TestQRImage(t *testing.T) {
	png, err := QRImage(`{"ticketId":"T1","busCode":"038038"}`, 128)
	if err != nil {
		t.Fatalf("qr image: %v", err)
	}
	// PNG magic header
	if len(png) < 8 || png[1] != 'P' || png[2] != 'N' || png[3] != 'G' {
		t.Errorf("not a png: % x", png[:8])
	}

	if _, err := QRImage("  ", 128); !errors.Is(err, ErrBadRequest) {
		t.Errorf("blank payload err = %v", err)
	}
}

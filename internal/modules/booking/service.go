// README: Booking service; validates the party, prices the trip, and books remotely.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"busline/internal/modules/fare"
	"busline/internal/modules/fleet"
	"busline/internal/modules/ticket"
	"busline/internal/ticketsvc"
)

var (
	ErrBadRequest = errors.New("bad booking request")
	ErrNoSuchBus  = errors.New("bus not found")
)

// BusDirectory resolves a bus code to its live record.
type BusDirectory interface {
	Track(ctx context.Context, busCode string) (*fleet.Bus, error)
}

// Booker is the remote booking call.
type Booker interface {
	Book(ctx context.Context, req ticketsvc.BookingRequest) (*ticket.Record, error)
}

type Passenger struct {
	FullName string `json:"fullName"`
	Age      int    `json:"age"`
}

type Command struct {
	BusCode     string
	Source      string
	Destination string
	Passengers  []Passenger
	UserID      string
}

// Confirmation is what the rider gets back: the created record plus the QR
// payload their e-ticket carries.
type Confirmation struct {
	Ticket *ticket.Record
	Quote  fare.Quote
	QRText string
}

type Service struct {
	buses  BusDirectory
	fares  *fare.Service
	remote Booker
}

func NewService(buses BusDirectory, fares *fare.Service, remote Booker) *Service {
	return &Service{buses: buses, fares: fares, remote: remote}
}

func (s *Service) Book(ctx context.Context, cmd Command) (*Confirmation, error) {
	if err := validate(cmd); err != nil {
		return nil, err
	}

	bus, err := s.buses.Track(ctx, cmd.BusCode)
	if err != nil {
		if errors.Is(err, fleet.ErrNotFound) {
			return nil, ErrNoSuchBus
		}
		return nil, err
	}

	ages := make([]int, len(cmd.Passengers))
	for i, p := range cmd.Passengers {
		ages[i] = p.Age
	}
	quote, err := s.fares.Estimate(ctx, cmd.Source, cmd.Destination, bus.FarePerKm.Amount, ages)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	req := ticketsvc.BookingRequest{
		BusNo:       bus.BusNo,
		BusCode:     bus.BusCode,
		BusType:     bus.BusType,
		Source:      strings.TrimSpace(cmd.Source),
		Destination: strings.TrimSpace(cmd.Destination),
		Kms:         quote.DistanceKm,
		TotalFare:   float64(quote.Total.Amount) / 100.0,
		BookedAt:    time.Now().UTC().Format(time.RFC3339),
		Status:      string(ticket.StatusBooked),
		UserID:      cmd.UserID,
	}
	for _, p := range cmd.Passengers {
		req.AddPassenger(strings.TrimSpace(p.FullName), p.Age)
	}

	rec, err := s.remote.Book(ctx, req)
	if err != nil {
		return nil, err
	}

	qrText, err := ticket.EncodePayload(rec, time.Now(), cmd.UserID)
	if err != nil {
		return nil, err
	}
	return &Confirmation{Ticket: rec, Quote: quote, QRText: qrText}, nil
}

// QRImage renders a payload as a PNG QR symbol. High error correction so a
// worn paper printout still scans on the bus.
func QRImage(payload string, size int) ([]byte, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, ErrBadRequest
	}
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(payload, qrcode.High, size)
}

func validate(cmd Command) error {
	if strings.TrimSpace(cmd.BusCode) == "" {
		return fmt.Errorf("%w: bus code required", ErrBadRequest)
	}
	if strings.TrimSpace(cmd.Source) == "" || strings.TrimSpace(cmd.Destination) == "" {
		return fmt.Errorf("%w: source and destination required", ErrBadRequest)
	}
	if len(cmd.Passengers) == 0 {
		return fmt.Errorf("%w: at least one passenger", ErrBadRequest)
	}
	for _, p := range cmd.Passengers {
		if strings.TrimSpace(p.FullName) == "" {
			return fmt.Errorf("%w: passenger name required", ErrBadRequest)
		}
		if p.Age < 1 {
			return fmt.Errorf("%w: passenger age must be positive", ErrBadRequest)
		}
	}
	return nil
}

// README: REST client for the remote booking/listing ticket service.
package ticketsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"busline/internal/modules/ticket"
	"busline/internal/types"
)

// ErrTransport wraps every network or non-2xx failure. The session surfaces
// it to the operator; recovery is re-action or the next scheduled poll.
var ErrTransport = errors.New("ticket service unavailable")

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// wireTicket tolerates the shapes the service is known to emit: Mongo-style
// `_id` or plain `id`, a passenger array or a bare `totalPersons` count, and
// a missing status (treated as booked).
type wireTicket struct {
	ID           string       `json:"id"`
	MongoID      string       `json:"_id"`
	BusCode      string       `json:"busCode"`
	Source       string       `json:"source"`
	Destination  string       `json:"destination"`
	Status       string       `json:"status"`
	Passengers   []wirePerson `json:"passengers"`
	TotalPersons int          `json:"totalPersons"`
	Name         string       `json:"name"`
	TotalFare    float64      `json:"totalFare"`
	BookedAt     string       `json:"bookedAt"`
}

type wirePerson struct {
	FullName string `json:"fullName"`
	Age      int    `json:"age"`
}

func (w wireTicket) toRecord() *ticket.Record {
	id := w.ID
	if id == "" {
		id = w.MongoID
	}
	count := len(w.Passengers)
	if count == 0 {
		count = w.TotalPersons
	}
	status := ticket.Status(strings.ToLower(strings.TrimSpace(w.Status)))
	switch status {
	case ticket.StatusBooked, ticket.StatusValidated, ticket.StatusExpired:
	default:
		status = ticket.StatusBooked
	}
	bookedAt, _ := time.Parse(time.RFC3339, w.BookedAt)
	return &ticket.Record{
		ID:             types.ID(id),
		BusCode:        w.BusCode,
		Source:         w.Source,
		Destination:    w.Destination,
		PassengerCount: count,
		FareTotal:      types.Rupees(int64(w.TotalFare*100 + 0.5)),
		Status:         status,
		BookedAt:       bookedAt,
	}
}

// List fetches the current manifest for a bus code.
func (c *Client) List(ctx context.Context, busCode string) ([]*ticket.Record, error) {
	var wire []wireTicket
	err := c.do(ctx, http.MethodGet, "/tickets/"+url.PathEscape(busCode), nil, &wire)
	if err != nil {
		return nil, err
	}
	records := make([]*ticket.Record, 0, len(wire))
	for _, w := range wire {
		records = append(records, w.toRecord())
	}
	return records, nil
}

// Expire marks every booked ticket for the destination expired server-side.
// One request for the whole group; partial application is never possible.
func (c *Client) Expire(ctx context.Context, busCode, destination string) error {
	body := map[string]string{"busCode": busCode, "destination": destination}
	return c.do(ctx, http.MethodPut, "/tickets/expire", body, nil)
}

// Validate records a successful check-in for a single ticket.
func (c *Client) Validate(ctx context.Context, id types.ID) error {
	return c.do(ctx, http.MethodPut, "/tickets/"+url.PathEscape(string(id))+"/validate", nil, nil)
}

type BookingRequest struct {
	BusNo       string       `json:"busNo"`
	BusCode     string       `json:"busCode"`
	BusType     string       `json:"busType"`
	Passengers  []wirePerson `json:"passengers"`
	Source      string       `json:"source"`
	Destination string       `json:"destination"`
	Kms         float64      `json:"kms"`
	TotalFare   float64      `json:"totalFare"`
	BookedAt    string       `json:"bookedAt"`
	Status      string       `json:"status"`
	UserID      string       `json:"userId"`
}

func (r *BookingRequest) AddPassenger(fullName string, age int) {
	r.Passengers = append(r.Passengers, wirePerson{FullName: fullName, Age: age})
}

// Book creates a ticket and returns the record with its assigned id.
func (c *Client) Book(ctx context.Context, req BookingRequest) (*ticket.Record, error) {
	if req.Status == "" {
		req.Status = string(ticket.StatusBooked)
	}
	if req.BookedAt == "" {
		req.BookedAt = time.Now().UTC().Format(time.RFC3339)
	}
	var wire wireTicket
	if err := c.do(ctx, http.MethodPost, "/book", req, &wire); err != nil {
		return nil, err
	}
	return wire.toRecord(), nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		buf = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s %s: %s", ErrTransport, method, path, errorMessage(resp))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %v", ErrTransport, err)
		}
	}
	return nil
}

// errorMessage extracts `{message}` from a JSON error body, falling back to
// the raw text the way the service sometimes answers.
func errorMessage(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(raw) == 0 {
		return resp.Status
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return fmt.Sprintf("%s: %s", resp.Status, body.Message)
	}
	return fmt.Sprintf("%s: %s", resp.Status, strings.TrimSpace(string(raw)))
}

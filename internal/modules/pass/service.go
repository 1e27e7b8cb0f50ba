// README: Smart pass; 24h unlimited-ride QR, issued and verified locally.
package pass

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"busline/internal/types"
)

const (
	validity = 24 * time.Hour
	// flat fare regardless of route
	farePaise = 100_00
)

var ErrMalformed = errors.New("malformed pass payload")

type Pass struct {
	Source      string      `json:"source"`
	Destination string      `json:"destination"`
	Fare        types.Money `json:"-"`
	ValidUntil  time.Time   `json:"-"`
}

// payload is the self-contained QR body; no server-side pass registry exists,
// so the validity window travels inside the symbol.
type payload struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	ValidUntil  string `json:"validUntil"`
}

type Status string

const (
	StatusValid   Status = "valid"
	StatusExpired Status = "expired"
)

// Issue creates a pass valid for 24 hours from now and its QR text.
func Issue(source, destination string, now time.Time) (Pass, string, error) {
	source = strings.TrimSpace(source)
	destination = strings.TrimSpace(destination)
	if source == "" || destination == "" {
		return Pass{}, "", fmt.Errorf("%w: source and destination required", ErrMalformed)
	}

	p := Pass{
		Source:      source,
		Destination: destination,
		Fare:        types.Rupees(farePaise),
		ValidUntil:  now.Add(validity).UTC(),
	}
	raw, err := json.Marshal(payload{
		Source:      p.Source,
		Destination: p.Destination,
		ValidUntil:  p.ValidUntil.Format(time.RFC3339),
	})
	if err != nil {
		return Pass{}, "", err
	}
	return p, string(raw), nil
}

// Verify parses a scanned pass and checks its window against now.
func Verify(text string, now time.Time) (Pass, Status, error) {
	var raw payload
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return Pass{}, "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if raw.Source == "" || raw.Destination == "" || raw.ValidUntil == "" {
		return Pass{}, "", fmt.Errorf("%w: missing fields", ErrMalformed)
	}
	until, err := time.Parse(time.RFC3339, raw.ValidUntil)
	if err != nil {
		return Pass{}, "", fmt.Errorf("%w: bad validity timestamp", ErrMalformed)
	}

	p := Pass{
		Source:      raw.Source,
		Destination: raw.Destination,
		Fare:        types.Rupees(farePaise),
		ValidUntil:  until,
	}
	if now.After(until) {
		return p, StatusExpired, nil
	}
	return p, StatusValid, nil
}

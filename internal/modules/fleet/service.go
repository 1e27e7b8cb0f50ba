// README: Fleet service; search, track, seeding, and the dev position simulator.
package fleet

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"busline/internal/types"
)

const (
	seedFleetSize = 20
	// simulatorStep per tick; a full route takes ~4 minutes of dev time
	simulatorStep = 0.02
	simulatorTick = 5 * time.Second
)

var ErrEmptyQuery = errors.New("source and/or destination required")

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

// Seed populates the fleet once; an already-seeded store is left alone.
func (s *Service) Seed(ctx context.Context) error {
	n, err := s.store.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	for _, b := range GenerateFleet(seedFleetSize, rnd) {
		if err := s.store.Save(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

// Search filters by substring on source and destination, either optional.
func (s *Service) Search(ctx context.Context, source, destination string) ([]*Bus, error) {
	source = strings.TrimSpace(source)
	destination = strings.TrimSpace(destination)
	if source == "" && destination == "" {
		return nil, ErrEmptyQuery
	}
	buses, err := s.store.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []*Bus
	for _, b := range buses {
		if source != "" && !containsFold(b.Source, source) {
			continue
		}
		if destination != "" && !containsFold(b.Destination, destination) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *Service) Track(ctx context.Context, busCode string) (*Bus, error) {
	busCode = strings.TrimSpace(busCode)
	if busCode == "" {
		return nil, ErrNotFound
	}
	return s.store.Get(ctx, busCode)
}

func (s *Service) Nearby(ctx context.Context, p types.Point, radiusKm float64) ([]*Bus, error) {
	codes, err := s.store.Nearby(ctx, p, radiusKm)
	if err != nil {
		return nil, err
	}
	buses := make([]*Bus, 0, len(codes))
	for _, code := range codes {
		b, err := s.store.Get(ctx, code)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		buses = append(buses, b)
	}
	return buses, nil
}

// RunSimulator steps every bus along its route until the context ends. It
// stands in for real vehicle telemetry in development.
func (s *Service) RunSimulator(ctx context.Context) {
	ticker := time.NewTicker(simulatorTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			buses, err := s.store.All(ctx)
			if err != nil {
				continue
			}
			for _, b := range buses {
				b.Advance(simulatorStep)
				_ = s.store.Save(ctx, b)
			}
		}
	}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

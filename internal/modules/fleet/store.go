// README: Fleet store backed by Redis hashes and a GEO set of bus positions.
package fleet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"busline/internal/types"
)

const (
	busKeyPrefix = "fleet:bus:%s"
	busIndexKey  = "fleet:codes"
	busGeoKey    = "fleet:positions"
)

var ErrNotFound = errors.New("bus not found")

type Store struct {
	redis *redis.Client
}

func NewStore(redis *redis.Client) *Store {
	return &Store{redis: redis}
}

// Save upserts the bus record and its GEO position in one pipeline.
func (s *Store) Save(ctx context.Context, b *Bus) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return err
	}
	pipe := s.redis.Pipeline()
	pipe.Set(ctx, busKey(b.BusCode), raw, 0)
	pipe.SAdd(ctx, busIndexKey, b.BusCode)
	pipe.GeoAdd(ctx, busGeoKey, &redis.GeoLocation{
		Name:      b.BusCode,
		Longitude: b.Position.Lng,
		Latitude:  b.Position.Lat,
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Store) Get(ctx context.Context, busCode string) (*Bus, error) {
	raw, err := s.redis.Get(ctx, busKey(busCode)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var b Bus
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) All(ctx context.Context) ([]*Bus, error) {
	codes, err := s.redis.SMembers(ctx, busIndexKey).Result()
	if err != nil {
		return nil, err
	}
	buses := make([]*Bus, 0, len(codes))
	for _, code := range codes {
		b, err := s.Get(ctx, code)
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

func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.redis.SCard(ctx, busIndexKey).Result()
}

// Nearby returns bus codes within radiusKm of a point, closest first.
func (s *Store) Nearby(ctx context.Context, p types.Point, radiusKm float64) ([]string, error) {
	results, err := s.redis.GeoSearch(ctx, busGeoKey, &redis.GeoSearchQuery{
		Longitude:  p.Lng,
		Latitude:   p.Lat,
		Radius:     radiusKm,
		RadiusUnit: "km",
		Sort:       "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}
	return results, nil
}

func busKey(busCode string) string {
	return fmt.Sprintf(busKeyPrefix, busCode)
}

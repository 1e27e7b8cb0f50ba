// README: Fare service; resolves trip distance and prices each passenger.
package fare

import (
	"context"
	"errors"
	"math"
	"strings"

	"busline/internal/modules/fleet"
	"busline/internal/types"
)

// DistanceSource is the live road-distance lookup. Nil is fine; the static
// route table and haversine fallback cover the served network.
type DistanceSource interface {
	DistanceKm(ctx context.Context, origin, destination string) (float64, error)
}

var ErrUnknownRoute = errors.New("no distance known for route")

type Service struct {
	maps DistanceSource
}

func NewService(maps DistanceSource) *Service {
	return &Service{maps: maps}
}

// Estimate prices a trip: per-head fare is distance times the per-km rate,
// halved for passengers at or past the concession age. Amounts are paise.
func (s *Service) Estimate(ctx context.Context, source, destination string, perKmPaise int64, ages []int) (Quote, error) {
	if len(ages) == 0 {
		return Quote{}, errors.New("no passengers")
	}
	if perKmPaise <= 0 {
		perKmPaise = defaultPerKmPaise
	}

	km, err := s.distanceKm(ctx, source, destination)
	if err != nil {
		return Quote{}, err
	}

	perHead := int64(math.Round(km * float64(perKmPaise)))
	var total int64
	concessions := 0
	for _, age := range ages {
		if age >= concessionAge {
			total += perHead / 2
			concessions++
			continue
		}
		total += perHead
	}

	return Quote{
		DistanceKm:  km,
		PerHead:     types.Rupees(perHead),
		Total:       types.Rupees(total),
		Passengers:  len(ages),
		Concessions: concessions,
	}, nil
}

// distanceKm tries the live source, then the route table, then a straight
// haversine between known stands.
func (s *Service) distanceKm(ctx context.Context, source, destination string) (float64, error) {
	if s.maps != nil {
		if km, err := s.maps.DistanceKm(ctx, source, destination); err == nil && km > 0 {
			return km, nil
		}
	}
	if r, ok := fleet.FindRoute(source, destination); ok {
		return r.Km, nil
	}
	if origin, ok := standFor(source); ok {
		if terminus, ok := standFor(destination); ok {
			return haversineKm(origin, terminus), nil
		}
	}
	return 0, ErrUnknownRoute
}

// standFor looks up a city's bus stand from the route table endpoints.
func standFor(city string) (types.Point, bool) {
	city = strings.TrimSpace(city)
	for _, r := range fleet.Routes {
		if strings.EqualFold(r.Source, city) {
			return r.Origin, true
		}
		if strings.EqualFold(r.Destination, city) {
			return r.Terminus, true
		}
	}
	return types.Point{}, false
}

func haversineKm(a, b types.Point) float64 {
	const earthRadiusKm = 6371.0
	lat1 := a.Lat * math.Pi / 180.0
	lat2 := b.Lat * math.Pi / 180.0
	dlat := (b.Lat - a.Lat) * math.Pi / 180.0
	dlng := (b.Lng - a.Lng) * math.Pi / 180.0
	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlng/2)*math.Sin(dlng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

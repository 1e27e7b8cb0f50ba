// README: Bus fleet model, canonical AP routes, and path interpolation.
package fleet

import (
	"fmt"
	"math/rand"
	"strings"

	"busline/internal/types"
)

type Bus struct {
	BusNo          string      `json:"busNo"`
	BusCode        string      `json:"busCode"`
	Source         string      `json:"source"`
	Destination    string      `json:"destination"`
	BusType        string      `json:"busType"`
	DistanceKm     float64     `json:"distanceKm"`
	FarePerKm      types.Money `json:"farePerKm"` // paise per km per head
	ArrivedInMins  int         `json:"arrivedInMins"`
	SeatsAvailable int         `json:"seatsAvailable"`
	DriverName     string      `json:"driverName"`
	Contact        string      `json:"contact"`
	Status         string      `json:"status"`
	Progress       float64     `json:"progress"` // fraction of the route covered
	Position       types.Point `json:"position"`
}

type Route struct {
	Source      string
	Destination string
	Km          float64
	Origin      types.Point
	Terminus    types.Point
}

// Routes is the served network. Coordinates are the city bus stands.
var Routes = []Route{
	{"Visakhapatnam", "Vijayawada", 350, types.Point{Lat: 17.7868, Lng: 83.3185}, types.Point{Lat: 16.5062, Lng: 80.6480}},
	{"Hyderabad", "Guntur", 280, types.Point{Lat: 17.3850, Lng: 78.4867}, types.Point{Lat: 16.3000, Lng: 80.4500}},
	{"Tirupati", "Nellore", 130, types.Point{Lat: 13.6288, Lng: 79.4192}, types.Point{Lat: 14.4440, Lng: 79.9922}},
	{"Kurnool", "Anantapur", 120, types.Point{Lat: 15.8281, Lng: 78.0374}, types.Point{Lat: 14.6819, Lng: 77.6057}},
	{"Rajahmundry", "Kakinada", 60, types.Point{Lat: 17.0000, Lng: 81.7800}, types.Point{Lat: 16.9400, Lng: 82.2300}},
	{"Vijayawada", "Visakhapatnam", 350, types.Point{Lat: 16.5062, Lng: 80.6480}, types.Point{Lat: 17.7868, Lng: 83.3185}},
	{"Guntur", "Kurnool", 200, types.Point{Lat: 16.3000, Lng: 80.4500}, types.Point{Lat: 15.8281, Lng: 78.0374}},
	{"Eluru", "Rajahmundry", 100, types.Point{Lat: 16.7100, Lng: 81.1000}, types.Point{Lat: 17.0000, Lng: 81.7800}},
	{"Nellore", "Chittoor", 150, types.Point{Lat: 14.4440, Lng: 79.9922}, types.Point{Lat: 13.2167, Lng: 79.1167}},
	{"Kakinada", "Vizianagaram", 180, types.Point{Lat: 16.9400, Lng: 82.2300}, types.Point{Lat: 18.1167, Lng: 83.4167}},
}

var busTypes = []string{"Deluxe", "Ultra Deluxe", "Express", "Pallevelugu"}

// FindRoute matches a route by its endpoints, case-insensitively.
func FindRoute(source, destination string) (Route, bool) {
	for _, r := range Routes {
		if strings.EqualFold(strings.TrimSpace(source), r.Source) &&
			strings.EqualFold(strings.TrimSpace(destination), r.Destination) {
			return r, true
		}
	}
	return Route{}, false
}

// PositionAt interpolates linearly along a route. frac is clamped to [0, 1].
func PositionAt(r Route, frac float64) types.Point {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return types.Point{
		Lat: r.Origin.Lat + (r.Terminus.Lat-r.Origin.Lat)*frac,
		Lng: r.Origin.Lng + (r.Terminus.Lng-r.Origin.Lng)*frac,
	}
}

// GenerateFleet builds n buses spread over the route table. The generator is
// injected so seeding stays reproducible in tests.
func GenerateFleet(n int, rnd *rand.Rand) []*Bus {
	buses := make([]*Bus, 0, n)
	for i := 0; i < n; i++ {
		route := Routes[rnd.Intn(len(Routes))]
		b := &Bus{
			BusNo:          fmt.Sprintf("AP%02dE%04d", rnd.Intn(90)+10, rnd.Intn(9000)+1000),
			BusCode:        fmt.Sprintf("0%06d", rnd.Intn(900000)+100000),
			Source:         route.Source,
			Destination:    route.Destination,
			BusType:        busTypes[rnd.Intn(len(busTypes))],
			DistanceKm:     route.Km,
			FarePerKm:      types.Rupees(int64(rnd.Intn(150)+50)), // 0.50 to 2.00 rupees per km
			ArrivedInMins:  rnd.Intn(45) + 5,
			SeatsAvailable: rnd.Intn(40) + 10,
			DriverName:     fmt.Sprintf("Driver %d", i+1),
			Contact:        fmt.Sprintf("987654321%d", i%10),
			Status:         "running",
			Progress:       0,
			Position:       route.Origin,
		}
		buses = append(buses, b)
	}
	return buses
}

func (b *Bus) route() (Route, bool) {
	return FindRoute(b.Source, b.Destination)
}

// Advance moves the bus along its route by the given fraction, looping back
// to the origin at the terminus as the dev fleet runs continuously.
func (b *Bus) Advance(step float64) {
	r, ok := b.route()
	if !ok {
		return
	}
	b.Progress += step
	if b.Progress >= 1 {
		b.Progress = 0
	}
	b.Position = PositionAt(r, b.Progress)
}

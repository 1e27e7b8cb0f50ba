// README: Fare quote structures and concession rules.
package fare

import "busline/internal/types"

const (
	// concessionAge is the age from which the half-fare concession applies.
	concessionAge = 50
	// defaultPerKmPaise is used when the bus does not carry its own rate.
	defaultPerKmPaise = 150
)

type Quote struct {
	DistanceKm  float64
	PerHead     types.Money // full adult fare for the trip
	Total       types.Money
	Passengers  int
	Concessions int // heads billed at half fare
}

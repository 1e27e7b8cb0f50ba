// README: Shared value objects used across modules.
package types

type ID string

// Money is an integer amount in paise to avoid float drift in fares.
type Money struct {
	Amount   int64
	Currency string
}

func Rupees(paise int64) Money {
	return Money{Amount: paise, Currency: "INR"}
}

type Point struct {
	Lat float64
	Lng float64
}

// README: HTTP router registration.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"busline/internal/http/handlers"
	"busline/internal/http/middleware"
	"busline/internal/modules/booking"
	"busline/internal/modules/conductor"
	"busline/internal/modules/fare"
	"busline/internal/modules/fleet"
	"busline/internal/modules/lostfound"
)

type RouterDeps struct {
	Session   *conductor.Session
	Booking   *booking.Service
	Fares     *fare.Service
	Fleet     *fleet.Service
	LostFound *lostfound.Service
	Log       *slog.Logger
}

func NewRouter(deps RouterDeps) http.Handler {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}

	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.Logging(log))

	conductorHandler := handlers.NewConductorHandler(deps.Session)
	r.PUT("/api/conductor/bus", conductorHandler.SetBus)
	r.GET("/api/conductor/tickets", conductorHandler.Tickets)
	r.POST("/api/conductor/scan", conductorHandler.Scan)
	r.POST("/api/conductor/arrived", conductorHandler.Arrived)
	r.PUT("/api/conductor/destination", conductorHandler.SelectDestination)
	r.POST("/api/conductor/pass/verify", conductorHandler.VerifyPass)

	bookingHandler := handlers.NewBookingHandler(deps.Booking, deps.Fares)
	r.POST("/api/book", bookingHandler.Book)
	r.POST("/api/fare/quote", bookingHandler.Quote)
	r.POST("/api/tickets/qr", bookingHandler.QRImage)
	r.POST("/api/pass", bookingHandler.IssuePass)

	fleetHandler := handlers.NewFleetHandler(deps.Fleet)
	r.GET("/api/buses", fleetHandler.Search)
	r.GET("/api/buses/nearby", fleetHandler.Nearby)
	r.GET("/api/track/:busCode", fleetHandler.Track)

	lostFoundHandler := handlers.NewLostFoundHandler(deps.LostFound)
	r.POST("/api/missing-items", lostFoundHandler.Report)
	r.GET("/api/missing-items", lostFoundHandler.List)
	r.POST("/api/missing-items/:id/found", lostFoundHandler.MarkFound)
	r.GET("/api/missing-items/:id/suggestions", lostFoundHandler.Suggestions)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}

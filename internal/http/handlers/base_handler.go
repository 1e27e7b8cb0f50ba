// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"busline/internal/modules/booking"
	"busline/internal/modules/conductor"
	"busline/internal/modules/fare"
	"busline/internal/modules/fleet"
	"busline/internal/modules/lostfound"
	"busline/internal/modules/pass"
	"busline/internal/modules/ticket"
	"busline/internal/ticketsvc"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeDomainError maps module sentinels onto HTTP status codes so every
// handler reports failures the same way.
func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ticket.ErrMalformedPayload),
		errors.Is(err, booking.ErrBadRequest),
		errors.Is(err, fleet.ErrEmptyQuery),
		errors.Is(err, pass.ErrMalformed),
		errors.Is(err, lostfound.ErrBadReport):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, fleet.ErrNotFound),
		errors.Is(err, booking.ErrNoSuchBus),
		errors.Is(err, lostfound.ErrNotFound),
		errors.Is(err, fare.ErrUnknownRoute):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ticket.ErrAlreadyValidated),
		errors.Is(err, ticket.ErrExpired):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, conductor.ErrNoBusCode),
		errors.Is(err, conductor.ErrUnknownDestination):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ticketsvc.ErrTransport):
		writeError(c, http.StatusBadGateway, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

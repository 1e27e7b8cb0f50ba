// README: Fleet handlers for search, tracking, and nearby lookup.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"busline/internal/modules/fleet"
	"busline/internal/types"
)

type FleetHandler struct {
	fleet *fleet.Service
}

func NewFleetHandler(svc *fleet.Service) *FleetHandler {
	return &FleetHandler{fleet: svc}
}

func (h *FleetHandler) Search(c *gin.Context) {
	buses, err := h.fleet.Search(c.Request.Context(), c.Query("source"), c.Query("destination"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"buses": buses})
}

func (h *FleetHandler) Track(c *gin.Context) {
	code := c.Param("busCode")
	if code == "" {
		writeError(c, http.StatusBadRequest, "missing bus code")
		return
	}
	bus, err := h.fleet.Track(c.Request.Context(), code)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, bus)
}

func (h *FleetHandler) Nearby(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lng, err2 := strconv.ParseFloat(c.Query("lng"), 64)
	if err1 != nil || err2 != nil {
		writeError(c, http.StatusBadRequest, "lat and lng are required")
		return
	}
	radiusKm := 25.0
	if v := c.Query("radiusKm"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r <= 0 || r > 500 {
			writeError(c, http.StatusBadRequest, "radiusKm must be between 0 and 500")
			return
		}
		radiusKm = r
	}
	buses, err := h.fleet.Nearby(c.Request.Context(), types.Point{Lat: lat, Lng: lng}, radiusKm)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"buses": buses})
}

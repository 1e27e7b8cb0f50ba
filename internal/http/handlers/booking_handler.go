// README: Rider booking handlers: book, fare quote, QR image, day pass.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"busline/internal/modules/booking"
	"busline/internal/modules/fare"
	"busline/internal/modules/pass"
)

type BookingHandler struct {
	booking *booking.Service
	fares   *fare.Service
}

func NewBookingHandler(bookingSvc *booking.Service, fareSvc *fare.Service) *BookingHandler {
	return &BookingHandler{booking: bookingSvc, fares: fareSvc}
}

type bookReq struct {
	BusCode     string              `json:"busCode"`
	Source      string              `json:"source"`
	Destination string              `json:"destination"`
	Passengers  []booking.Passenger `json:"passengers"`
	UserID      string              `json:"userId"`
}

func (h *BookingHandler) Book(c *gin.Context) {
	var req bookReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	conf, err := h.booking.Book(c.Request.Context(), booking.Command{
		BusCode:     req.BusCode,
		Source:      req.Source,
		Destination: req.Destination,
		Passengers:  req.Passengers,
		UserID:      req.UserID,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{
		"ticket":     toTicketDTO(*conf.Ticket),
		"fare":       quoteDTO(conf.Quote),
		"qrPayload":  conf.QRText,
		"passengers": len(req.Passengers),
	})
}

type quoteReq struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	PerKmPaise  int64  `json:"perKmPaise"`
	Ages        []int  `json:"ages"`
}

func (h *BookingHandler) Quote(c *gin.Context) {
	var req quoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	q, err := h.fares.Estimate(c.Request.Context(), req.Source, req.Destination, req.PerKmPaise, req.Ages)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, quoteDTO(q))
}

func quoteDTO(q fare.Quote) gin.H {
	return gin.H{
		"distanceKm":  q.DistanceKm,
		"perHead":     float64(q.PerHead.Amount) / 100,
		"total":       float64(q.Total.Amount) / 100,
		"passengers":  q.Passengers,
		"concessions": q.Concessions,
	}
}

type qrImageReq struct {
	Payload string `json:"payload"`
}

// QRImage renders a QR payload string as a PNG. It is stateless; the payload
// comes from a prior booking confirmation.
func (h *BookingHandler) QRImage(c *gin.Context) {
	var req qrImageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	size := 256
	if v := c.Query("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 64 || n > 1024 {
			writeError(c, http.StatusBadRequest, "size must be between 64 and 1024")
			return
		}
		size = n
	}
	png, err := booking.QRImage(req.Payload, size)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

type issuePassReq struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

func (h *BookingHandler) IssuePass(c *gin.Context) {
	var req issuePassReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	p, qrText, err := pass.Issue(req.Source, req.Destination, time.Now())
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{
		"source":      p.Source,
		"destination": p.Destination,
		"fare":        float64(p.Fare.Amount) / 100,
		"validUntil":  p.ValidUntil,
		"qrPayload":   qrText,
	})
}

// README: Conductor handlers for bus selection, scanning, and arrival.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"busline/internal/modules/conductor"
	"busline/internal/modules/pass"
)

type ConductorHandler struct {
	session *conductor.Session
}

func NewConductorHandler(session *conductor.Session) *ConductorHandler {
	return &ConductorHandler{session: session}
}

type setBusReq struct {
	BusCode string `json:"busCode"`
}

func (h *ConductorHandler) SetBus(c *gin.Context) {
	var req setBusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.session.SetBusCode(c.Request.Context(), req.BusCode); err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, ticketsView(h.session.Snapshot()))
}

func (h *ConductorHandler) Tickets(c *gin.Context) {
	writeJSON(c, http.StatusOK, ticketsView(h.session.Snapshot()))
}

type scanReq struct {
	Data string `json:"data"`
}

type scanResp struct {
	Result      string     `json:"result"`
	Ticket      *ticketDTO `json:"ticket,omitempty"`
	RemoteError string     `json:"remoteError,omitempty"`
}

func (h *ConductorHandler) Scan(c *gin.Context) {
	var req scanReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	out, err := h.session.HandleScan(c.Request.Context(), req.Data)
	if err != nil && out.Ticket == nil {
		writeDomainError(c, err)
		return
	}

	// A transport failure after a local match still reports the match; the
	// next poll reconciles the remote side.
	resp := scanResp{Result: string(out.Kind)}
	if out.Ticket != nil {
		dto := toTicketDTO(*out.Ticket)
		resp.Ticket = &dto
	}
	if err != nil {
		resp.RemoteError = err.Error()
	}
	writeJSON(c, http.StatusOK, resp)
}

type arrivedReq struct {
	Destination string `json:"destination"`
}

func (h *ConductorHandler) Arrived(c *gin.Context) {
	var req arrivedReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.session.MarkDestinationArrived(c.Request.Context(), req.Destination); err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, ticketsView(h.session.Snapshot()))
}

type selectDestinationReq struct {
	Destination string `json:"destination"`
}

func (h *ConductorHandler) SelectDestination(c *gin.Context) {
	var req selectDestinationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.session.SelectDestination(req.Destination); err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, ticketsView(h.session.Snapshot()))
}

type verifyPassReq struct {
	Data string `json:"data"`
}

func (h *ConductorHandler) VerifyPass(c *gin.Context) {
	var req verifyPassReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	p, status, err := pass.Verify(req.Data, time.Now())
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"status":      status,
		"source":      p.Source,
		"destination": p.Destination,
		"validUntil":  p.ValidUntil,
	})
}

// README: Lost & found handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"busline/internal/modules/lostfound"
	"busline/internal/types"
)

type LostFoundHandler struct {
	lostfound *lostfound.Service
}

func NewLostFoundHandler(svc *lostfound.Service) *LostFoundHandler {
	return &LostFoundHandler{lostfound: svc}
}

func (h *LostFoundHandler) Report(c *gin.Context) {
	var cmd lostfound.ReportCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	r, err := h.lostfound.Report(c.Request.Context(), cmd)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, r)
}

func (h *LostFoundHandler) List(c *gin.Context) {
	reports, err := h.lostfound.Search(c.Request.Context(), c.Query("busCode"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"reports": reports})
}

type markFoundReq struct {
	FoundBy string `json:"foundBy"`
}

func (h *LostFoundHandler) MarkFound(c *gin.Context) {
	var req markFoundReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	id := types.ID(c.Param("id"))
	if err := h.lostfound.MarkFound(c.Request.Context(), id, req.FoundBy); err != nil {
		writeDomainError(c, err)
		return
	}
	r, err := h.lostfound.Get(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, r)
}

func (h *LostFoundHandler) Suggestions(c *gin.Context) {
	matches, err := h.lostfound.Suggest(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"matches": matches})
}

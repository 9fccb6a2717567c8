package admin

import (
	"net/http"

	"github.com/ZJUSCT/TopTSP/internal/util"
	"github.com/gin-gonic/gin"
)

func (h *Handler) resetRanking(c *gin.Context) {
	if err := h.svc.ResetRanking(); err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, nil, "Ranking reset")
}

func (h *Handler) toggleFreeze(c *gin.Context) {
	var req struct {
		Frozen *bool `json:"frozen" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}
	if err := h.svc.ToggleFreeze(*req.Frozen); err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, gin.H{"frozen": *req.Frozen}, "Leaderboard updated")
}

func (h *Handler) setEndDate(c *gin.Context) {
	var req struct {
		EndDate string `json:"end_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}
	if err := h.svc.SetEndDate(req.EndDate); err != nil {
		util.DomainError(c, err)
		return
	}
	h.writeSettings(c, "End date updated")
}

func (h *Handler) setInstanceName(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}
	if err := h.svc.SetInstanceName(req.Name); err != nil {
		util.DomainError(c, err)
		return
	}
	h.writeSettings(c, "Instance name updated")
}

func (h *Handler) writeSettings(c *gin.Context, message string) {
	settings, err := h.svc.Settings()
	if err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, settings, message)
}

package user

import (
	"github.com/ZJUSCT/TopTSP/internal/util"
	"github.com/gin-gonic/gin"
)

func (h *Handler) getRanking(c *gin.Context) {
	view, err := h.svc.Ranking()
	if err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, view, "ok")
}

func (h *Handler) getSettings(c *gin.Context) {
	settings, err := h.svc.Settings()
	if err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, settings, "ok")
}

func (h *Handler) getBestHistory(c *gin.Context) {
	improvements, err := h.svc.BestHistory()
	if err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, gin.H{"improvements": improvements}, "ok")
}

func (h *Handler) getUserBestRoute(c *gin.Context) {
	route, err := h.svc.UserBestRoute(c.Param("id"))
	if err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, route, "ok")
}

func (h *Handler) getUserTimeline(c *gin.Context) {
	subs, err := h.svc.UserTimeline(c.Param("id"))
	if err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, gin.H{"submissions": subs}, "ok")
}

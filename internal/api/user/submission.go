package user

import (
	"errors"
	"net/http"

	"github.com/ZJUSCT/TopTSP/internal/api"
	"github.com/ZJUSCT/TopTSP/internal/competition"
	"github.com/ZJUSCT/TopTSP/internal/util"
	"github.com/gin-gonic/gin"
)

func (h *Handler) submitSolution(c *gin.Context) {
	var req struct {
		Solution string `json:"solution"`
		Method   string `json:"method"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	res, err := h.svc.SubmitSolution(c.GetString(api.KeyUserID), req.Solution, req.Method)
	if errors.Is(err, competition.ErrNoInstance) {
		util.Error(c, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, res, "Solution submitted")
}

func (h *Handler) getUserSolutions(c *gin.Context) {
	subs, err := h.svc.UserSolutions(c.GetString(api.KeyUserID))
	if err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, gin.H{"solutions": subs}, "ok")
}

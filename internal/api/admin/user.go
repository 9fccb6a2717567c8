package admin

import (
	"net/http"

	"github.com/ZJUSCT/TopTSP/internal/api"
	"github.com/ZJUSCT/TopTSP/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) getAllUsers(c *gin.Context) {
	users, err := h.svc.Participants()
	if err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, users, "Users retrieved successfully")
}

func (h *Handler) createUsers(c *gin.Context) {
	var req struct {
		Emails string `json:"emails" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	res, err := h.svc.CreateUsers(req.Emails)
	if err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, res, "Users created")
}

func (h *Handler) deleteUser(c *gin.Context) {
	userID := c.Param("id")
	if userID == c.GetString(api.KeyUserID) {
		util.Error(c, http.StatusBadRequest, "cannot delete yourself")
		return
	}
	if err := h.svc.DeleteUser(userID); err != nil {
		util.DomainError(c, err)
		return
	}
	zap.S().Infof("admin %s deleted user %s", c.GetString(api.KeyUserID), userID)
	util.Success(c, nil, "User deleted successfully")
}

func (h *Handler) resetUserPassword(c *gin.Context) {
	if err := h.svc.ResetPassword(c.Param("id")); err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, nil, "Password reset to the user's email")
}

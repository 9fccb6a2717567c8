package user

import (
	"net/http"

	"github.com/ZJUSCT/TopTSP/internal/api"
	"github.com/ZJUSCT/TopTSP/internal/auth"
	"github.com/ZJUSCT/TopTSP/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	user, err := h.svc.Authenticate(req.Email, req.Password)
	if err != nil {
		util.DomainError(c, err)
		return
	}

	jwtToken, err := auth.GenerateJWT(user.ID, user.IsAdmin, h.cfg.Auth.JWT.Secret, h.cfg.Auth.JWT.ExpireHours)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to generate JWT")
		return
	}

	zap.S().Infof("user %s logged in", user.Email)
	util.Success(c, gin.H{
		"token":                   jwtToken,
		"user":                    user,
		"require_password_change": user.FirstLogin,
	}, "Login successful")
}

func (h *Handler) getCurrentUser(c *gin.Context) {
	user, err := h.svc.User(c.GetString(api.KeyUserID))
	if err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, user, "ok")
}

func (h *Handler) changePassword(c *gin.Context) {
	var req struct {
		NewPassword string `json:"new_password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	if err := h.svc.ChangePassword(c.GetString(api.KeyUserID), req.NewPassword); err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, nil, "Password changed")
}

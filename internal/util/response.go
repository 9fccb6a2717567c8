package util

import (
	"errors"
	"net/http"

	"github.com/ZJUSCT/TopTSP/internal/competition"
	"github.com/ZJUSCT/TopTSP/internal/tsp"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Response struct {
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

func Success(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Data:    data,
		Message: message,
	})
}

func Error(c *gin.Context, code int, err interface{}) {
	msg := ""
	switch e := err.(type) {
	case string:
		msg = e
	case error:
		msg = e.Error()
	default:
		msg = "Internal Server Error"
	}

	if code >= http.StatusInternalServerError {
		zap.S().Errorf("API Error: %s", msg)
	} else {
		zap.S().Debugf("API Error: %s", msg)
	}

	c.JSON(code, Response{
		Code:    -1,
		Data:    nil,
		Message: msg,
	})
}

// StatusOf maps a domain error to the HTTP status it is reported with.
func StatusOf(err error) int {
	switch {
	case tsp.IsParseError(err), tsp.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, competition.ErrInvalidDate):
		return http.StatusBadRequest
	case errors.Is(err, competition.ErrNoInstance):
		return http.StatusNotFound
	case errors.Is(err, competition.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, competition.ErrCompetitionClosed):
		return http.StatusForbidden
	case errors.Is(err, competition.ErrAdminProtected):
		return http.StatusForbidden
	case errors.Is(err, competition.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// DomainError writes err with the status from StatusOf. Storage failures are
// reported without their driver detail.
func DomainError(c *gin.Context, err error) {
	code := StatusOf(err)
	if code == http.StatusInternalServerError {
		zap.S().Errorf("internal error on %s %s: %v", c.Request.Method, c.FullPath(), err)
		Error(c, code, "internal server error")
		return
	}
	Error(c, code, err)
}

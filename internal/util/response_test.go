package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ZJUSCT/TopTSP/internal/competition"
	"github.com/ZJUSCT/TopTSP/internal/tsp"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: missing required fields", tsp.ErrInvalidFormat), http.StatusBadRequest},
		{tsp.ErrDimensionMismatch, http.StatusBadRequest},
		{fmt.Errorf("%w: node 3", tsp.ErrDuplicateNode), http.StatusBadRequest},
		{tsp.ErrEmptyInput, http.StatusBadRequest},
		{competition.ErrInvalidDate, http.StatusBadRequest},
		{competition.ErrNoInstance, http.StatusNotFound},
		{competition.ErrNotFound, http.StatusNotFound},
		{competition.ErrCompetitionClosed, http.StatusForbidden},
		{competition.ErrAdminProtected, http.StatusForbidden},
		{competition.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("%w: disk I/O error", competition.ErrStorage), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			require.Equal(t, tc.want, StatusOf(tc.err))
		})
	}
}

func TestDomainError_HidesStorageDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	DomainError(c, fmt.Errorf("%w: database is locked", competition.ErrStorage))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, -1, resp.Code)
	require.Equal(t, "internal server error", resp.Message)
}

func TestSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, gin.H{"n": 1}, "ok")

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"code":0,"data":{"n":1},"message":"ok"}`, w.Body.String())
}

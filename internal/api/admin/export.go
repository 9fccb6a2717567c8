package admin

import (
	"fmt"
	"net/http"

	"github.com/ZJUSCT/TopTSP/internal/competition"
	"github.com/ZJUSCT/TopTSP/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const exportFilename = "toptsp-export.csv"

func (h *Handler) exportCSV(c *gin.Context) {
	rows, err := h.svc.ExportHistory()
	if err != nil {
		util.DomainError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := competition.WriteHistoryCSV(c.Writer, rows); err != nil {
		zap.S().Errorf("failed to write CSV export: %v", err)
	}
}

package user

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ZJUSCT/TopTSP/internal/competition"
	"github.com/ZJUSCT/TopTSP/internal/database/models"
	"github.com/ZJUSCT/TopTSP/internal/util"
	"github.com/gin-gonic/gin"
)

type instanceSummary struct {
	ID          uint                `json:"id"`
	Name        string              `json:"name"`
	Dimension   int                 `json:"dimension"`
	Type        string              `json:"type"`
	Comment     string              `json:"comment"`
	CreatedAt   time.Time           `json:"created_at"`
	Coordinates *models.Coordinates `json:"coordinates,omitempty"`
}

func summarize(inst *models.Instance, withCoords bool) instanceSummary {
	s := instanceSummary{
		ID:        inst.ID,
		Name:      inst.Name,
		Dimension: inst.Dimension,
		Type:      inst.Type,
		Comment:   inst.Comment,
		CreatedAt: inst.CreatedAt,
	}
	if withCoords {
		s.Coordinates = &inst.Coordinates
	}
	return s
}

// writeInstance answers with has_instance=false rather than an error when no
// instance has been uploaded yet.
func (h *Handler) writeInstance(c *gin.Context, withCoords bool) {
	inst, err := h.svc.ActiveInstance()
	if errors.Is(err, competition.ErrNoInstance) {
		util.Success(c, gin.H{"has_instance": false}, "no instance")
		return
	}
	if err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, gin.H{
		"has_instance": true,
		"instance":     summarize(inst, withCoords),
	}, "ok")
}

func (h *Handler) getInstance(c *gin.Context) {
	h.writeInstance(c, false)
}

func (h *Handler) getInstanceCoords(c *gin.Context) {
	h.writeInstance(c, true)
}

func (h *Handler) downloadInstance(c *gin.Context) {
	filename, content, err := h.svc.InstanceDownload()
	if err != nil {
		util.DomainError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(content))
}

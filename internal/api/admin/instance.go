package admin

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/ZJUSCT/TopTSP/internal/competition"
	"github.com/ZJUSCT/TopTSP/internal/util"
	"github.com/gin-gonic/gin"
)

const maxInstanceSize = 16 * 1024 * 1024

func (h *Handler) getInstance(c *gin.Context) {
	inst, err := h.svc.ActiveInstance()
	if errors.Is(err, competition.ErrNoInstance) {
		util.Success(c, gin.H{"has_instance": false}, "no instance")
		return
	}
	if err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, gin.H{"has_instance": true, "instance": inst}, "ok")
}

type uploadRequest struct {
	TSPData         string `json:"tsp_data"`
	ReplaceExisting bool   `json:"replace_existing"`
}

// readUpload accepts either a JSON body or a multipart form with a "file"
// part and a "replace_existing" field.
func readUpload(c *gin.Context) (*uploadRequest, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var req uploadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, err
		}
		return &req, nil
	}

	file, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("file form field is required: %w", err)
	}
	if file.Size > maxInstanceSize {
		return nil, fmt.Errorf("instance file is too large. Maximum size is %d bytes", maxInstanceSize)
	}
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxInstanceSize))
	if err != nil {
		return nil, err
	}

	replace, _ := strconv.ParseBool(c.PostForm("replace_existing"))
	return &uploadRequest{TSPData: string(data), ReplaceExisting: replace}, nil
}

func (h *Handler) uploadInstance(c *gin.Context) {
	req, err := readUpload(c)
	if err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.TSPData) == "" {
		util.Error(c, http.StatusBadRequest, "TSP data is required")
		return
	}

	inst, err := h.svc.UploadInstance(req.TSPData, req.ReplaceExisting)
	if err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, gin.H{
		"instance_id": inst.ID,
		"dimension":   inst.Dimension,
		"cleared":     req.ReplaceExisting,
	}, "Instance uploaded")
}

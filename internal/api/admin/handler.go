package admin

import (
	"github.com/ZJUSCT/TopTSP/internal/competition"
	"github.com/ZJUSCT/TopTSP/internal/config"
)

// Handler holds all dependencies for the admin API handlers.
type Handler struct {
	cfg *config.Config
	svc *competition.Service
}

// NewHandler creates a new admin handler with its dependencies.
func NewHandler(cfg *config.Config, svc *competition.Service) *Handler {
	return &Handler{
		cfg: cfg,
		svc: svc,
	}
}

package user

import (
	"github.com/ZJUSCT/TopTSP/internal/competition"
	"github.com/ZJUSCT/TopTSP/internal/config"
)

// Subscriber delivers ranking change notifications to websocket clients.
type Subscriber interface {
	Subscribe(topic string) (<-chan []byte, func())
}

// Handler holds all dependencies for the user API handlers.
type Handler struct {
	cfg    *config.Config
	svc    *competition.Service
	events Subscriber
}

// NewHandler creates a new user handler with its dependencies.
func NewHandler(cfg *config.Config, svc *competition.Service, events Subscriber) *Handler {
	return &Handler{
		cfg:    cfg,
		svc:    svc,
		events: events,
	}
}

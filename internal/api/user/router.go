package user

import (
	"github.com/ZJUSCT/TopTSP/internal/api"
	"github.com/ZJUSCT/TopTSP/internal/competition"
	"github.com/ZJUSCT/TopTSP/internal/config"
	"github.com/gin-gonic/gin"
)

// NewUserRouter creates and configures the participant Gin engine.
func NewUserRouter(cfg *config.Config, svc *competition.Service, events Subscriber) *gin.Engine {
	r := gin.Default()

	r.Use(api.CORSMiddleware(cfg.CORS))

	h := NewHandler(cfg, svc, events)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/auth/login", h.login)

		// Websocket pushing the leaderboard on every change
		v1.GET("/ws/ranking", h.handleRankingWs)

		// Publicly accessible info
		v1.GET("/ranking", h.getRanking)
		v1.GET("/settings", h.getSettings)
		v1.GET("/best-history", h.getBestHistory)
		v1.GET("/users/:id/solution", h.getUserBestRoute)
		v1.GET("/users/:id/submissions", h.getUserTimeline)

		instance := v1.Group("/instance")
		{
			instance.GET("", h.getInstance)
			instance.GET("/coords", h.getInstanceCoords)
			instance.GET("/download", h.downloadInstance)
		}

		// Authenticated routes
		authed := v1.Group("/")
		authed.Use(api.AuthMiddleware(cfg.Auth.JWT.Secret))
		{
			profile := authed.Group("/user")
			{
				profile.GET("", h.getCurrentUser)
				profile.POST("/password", h.changePassword)
				profile.GET("/solutions", h.getUserSolutions)
			}

			authed.POST("/submit", h.submitSolution)
		}
	}

	return r
}

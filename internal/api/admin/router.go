package admin

import (
	"github.com/ZJUSCT/TopTSP/internal/api"
	"github.com/ZJUSCT/TopTSP/internal/competition"
	"github.com/ZJUSCT/TopTSP/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewAdminRouter creates and configures the admin Gin engine.
func NewAdminRouter(cfg *config.Config, svc *competition.Service) *gin.Engine {
	r := gin.Default()

	r.Use(api.CORSMiddleware(cfg.CORS))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := NewHandler(cfg, svc)

	v1 := r.Group("/api/v1")
	v1.Use(api.AuthMiddleware(cfg.Auth.JWT.Secret), api.AdminMiddleware())
	{
		// Instance Management
		instance := v1.Group("/instance")
		{
			instance.GET("", h.getInstance)
			instance.POST("", h.uploadInstance)
		}

		// Leaderboard
		rankingGroup := v1.Group("/ranking")
		{
			rankingGroup.POST("/reset", h.resetRanking)
			rankingGroup.POST("/freeze", h.toggleFreeze)
		}

		settings := v1.Group("/settings")
		{
			settings.POST("/end-date", h.setEndDate)
			settings.POST("/instance-name", h.setInstanceName)
		}

		// User Management
		users := v1.Group("/users")
		{
			users.GET("", h.getAllUsers)
			users.POST("", h.createUsers)
			users.DELETE("/:id", h.deleteUser)
			users.POST("/:id/reset-password", h.resetUserPassword)
		}

		v1.GET("/export.csv", h.exportCSV)
	}

	return r
}

package webserver

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/stake-plus/ideaforge/src/config"
	"github.com/stake-plus/ideaforge/src/tracker"
)

// New builds the read-side HTTP API: health, the ranked idea list, and a
// token-guarded priority endpoint for maintainer tooling.
func New(cfg config.Config, tc *tracker.Client) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	attachRoutes(g, cfg, tc)
	return g
}

func attachRoutes(r *gin.Engine, cfg config.Config, tc *tracker.Client) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	ideasH := NewIdeas(tc)

	v1 := r.Group("/v1")
	{
		v1.GET("/ideas", ideasH.List)

		secured := v1.Use(JWTMiddleware([]byte(cfg.JWTSecret)))
		secured.POST("/priority", ideasH.SetPriority)
	}
}

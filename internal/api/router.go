package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storegg/internal/logger"
	"storegg/internal/metrics"
	"storegg/internal/middleware"
)

// NewRouter wires the public routes. limiter may be nil.
func NewRouter(h *Handlers, jwtSecret string, limiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.GinLogger(h.Logger))

	limit := func(c *gin.Context) { c.Next() }
	if limiter != nil {
		limit = limiter.Handler()
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.POST("/api/auth", limit, h.PostApiAuth)

	api := r.Group("/api", middleware.JWTAuthMiddleware(jwtSecret, h.Logger), limit)
	api.GET("/products", h.GetApiProducts)
	api.GET("/products/:id", h.GetApiProduct)
	api.GET("/info", h.GetApiInfo)
	api.POST("/buy/:id", h.PostApiBuyItem)
	api.POST("/sell/:id", h.PostApiSellItem)
	api.GET("/view", h.GetApiView)
	api.POST("/view", h.PostApiView)
	api.POST("/view/transact", h.PostApiTransact)
	api.POST("/minigame", h.PostApiMiniGame)
	api.POST("/minigame/:id/draw", h.PostApiDraw)

	return r
}

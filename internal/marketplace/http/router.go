package http

import "github.com/gin-gonic/gin"

// Register mounts the marketplace routes on the given group,
// conventionally /api/marketplace.
func (h *Handler) Register(g *gin.RouterGroup) {
	g.GET("", h.list)
	g.POST("", h.create)
	g.POST("/purchase", h.purchase)
	g.GET("/:itemId", h.get)
	g.GET("/:itemId/image", h.image)
	g.DELETE("/:itemId", h.delete)
}

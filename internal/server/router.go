// Package server is a reference implementation of the cart REST surface,
// backed by a port.CartRepository.
package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/agrocart/internal/port"
	"go.uber.org/zap"
)

func NewRouter(token string, repo port.CartRepository, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "route not found"})
	})

	h := &handlers{repo: repo, logger: logger}

	if token == "" {
		logger.Warn("server token is not set, cart routes are not authenticated")
	}

	carts := router.Group("/cart")
	carts.Use(bearerAuth(token))
	{
		carts.GET("/:principal", h.getCart)
		carts.POST("/add", h.addItem)
		carts.POST("/add-multiple", h.addItems)
		carts.PUT("/update", h.updateQuantity)
		carts.DELETE("/remove", h.removeItem)
		carts.DELETE("/clear/:principal", h.clearCart)
		carts.POST("/batch-update", h.batchUpdate)
	}

	return router
}

func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("panic recovered",
			zap.String("error", fmt.Sprint(recovered)),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
	})
}

func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.Info("http request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.String("request_id", c.GetHeader(requestIDHeader)),
		)
	}
}

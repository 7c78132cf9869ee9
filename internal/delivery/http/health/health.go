package http_health

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	appName string
	started time.Time
}

func New(appName string) *Controller {
	return &Controller{
		appName: appName,
		started: time.Now(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", c.health)
}

func (c *Controller) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"app":       c.appName,
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(c.started).String(),
	})
}

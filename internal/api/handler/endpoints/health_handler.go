package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func HealthHandler(router gin.IRouter) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

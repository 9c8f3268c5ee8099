package submission

import (
	"github.com/chivis/survey-relay/internal/config"
	"github.com/chivis/survey-relay/internal/loaders"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, cfg *config.Config, newSink loaders.SinkFactory) {
	service := NewService(cfg, newSink)
	controller := NewController(service)
	router.POST("/submit-form", controller.Submit)
}

package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"logsearch-backend/internal/service"
)

type HealthController struct {
	healthService service.HealthService
}

func NewHealthController(healthService service.HealthService) *HealthController {
	return &HealthController{
		healthService: healthService,
	}
}

func RegisterHealthRoutes(router *gin.Engine, controller *HealthController) {
	router.GET("/api/health", controller.GetHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// GetHealth godoc
// @Summary      Object store health
// @Description  Returns the outcome of the latest scheduled object store probe.
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthResponse "Store reachable or not probed yet"
// @Failure      503  {object}  dto.HealthResponse "Store unreachable"
// @Router       /api/health [get]
func (c *HealthController) GetHealth(ctx *gin.Context) {
	status := c.healthService.Latest()
	if status.Status == service.StatusDown {
		ctx.JSON(http.StatusServiceUnavailable, status)
		return
	}
	ctx.JSON(http.StatusOK, status)
}

package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"logsearch-backend/config"
	"logsearch-backend/internal/dto"
	"logsearch-backend/internal/model"
	"logsearch-backend/internal/service"
	"logsearch-backend/internal/util"
)

type LogController struct {
	logQueryService service.LogQueryService
	requestTimeout  time.Duration
}

func NewLogController(cfg *config.Config, logQueryService service.LogQueryService) *LogController {
	return &LogController{
		logQueryService: logQueryService,
		requestTimeout:  cfg.Server.RequestTimeout,
	}
}

func RegisterLogRoutes(router *gin.Engine, controller *LogController) {
	api := router.Group("/api")
	{
		api.GET("/search", controller.SearchLogs)
		api.GET("/sample", controller.GetSample)
	}
}

// SearchLogs godoc
// @Summary      Search stored logs
// @Description  Scans log objects newest first and returns up to limit matching records in object order, then line order.
// @Tags         logs
// @Produce      json
// @Param        q      query     string  false  "Case-insensitive substring matched against the serialized record"
// @Param        start  query     string  false  "Inclusive lower time bound, ISO 8601 or epoch milliseconds"
// @Param        end    query     string  false  "Inclusive upper time bound, ISO 8601 or epoch milliseconds"
// @Param        level  query     string  false  "Exact level match"
// @Param        limit  query     int     false  "Maximum number of records (default: 100)" minimum(1)
// @Param        where  query     string  false  "Boolean expression over timestamp, level, event and data, e.g. data.status >= 500"
// @Success      200    {object}  dto.LogSearchResponse "Matching records"
// @Failure      400    {object}  model.ErrorResponse "Invalid query parameters"
// @Failure      500    {object}  model.ErrorResponse "Object store unavailable"
// @Failure      504    {object}  model.ErrorResponse "Search timed out"
// @Router       /api/search [get]
func (c *LogController) SearchLogs(ctx *gin.Context) {
	req, err := parseSearchRequest(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, model.NewErrorResponse(err.Error()))
		return
	}

	reqCtx, cancel := c.withTimeout(ctx.Request.Context())
	defer cancel()

	result, err := c.logQueryService.SearchLogs(reqCtx, req)
	if err != nil {
		status := statusForError(err)
		log.Error().Err(err).Int("status", status).Msg("Error searching logs")
		ctx.JSON(status, model.NewErrorResponse(err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, dto.LogSearchResponse{Results: result.Records})
}

// GetSample godoc
// @Summary      Sample the most recent log object
// @Description  Returns the name and first raw lines of the log object searched first.
// @Tags         logs
// @Produce      json
// @Success      200  {object}  dto.LogSampleResponse "Sample lines"
// @Failure      404  {object}  model.ErrorResponse "No log files found"
// @Failure      500  {object}  model.ErrorResponse "Object store unavailable or object unreadable"
// @Router       /api/sample [get]
func (c *LogController) GetSample(ctx *gin.Context) {
	reqCtx, cancel := c.withTimeout(ctx.Request.Context())
	defer cancel()

	sample, err := c.logQueryService.Sample(reqCtx)
	if err != nil {
		if errors.Is(err, service.ErrNoLogObjects) {
			ctx.JSON(http.StatusNotFound, model.NewErrorResponse("No log files found"))
			return
		}
		status := statusForError(err)
		log.Error().Err(err).Int("status", status).Msg("Error sampling logs")
		ctx.JSON(status, model.NewErrorResponse(err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, sample)
}

func (c *LogController) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.requestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.requestTimeout)
}

func parseSearchRequest(ctx *gin.Context) (dto.LogSearchRequest, error) {
	req := dto.LogSearchRequest{
		Query: ctx.Query("q"),
		Where: ctx.Query("where"),
	}

	// an empty level is no level clause, like empty start and end
	if level := ctx.Query("level"); level != "" {
		req.Level = &level
	}

	if limitStr := strings.TrimSpace(ctx.Query("limit")); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			return req, fmt.Errorf("invalid limit %q: must be a positive integer", limitStr)
		}
		req.Limit = limit
	}

	for _, bound := range []struct {
		param string
		dst   **time.Time
	}{
		{param: "start", dst: &req.StartTime},
		{param: "end", dst: &req.EndTime},
	} {
		value := ctx.Query(bound.param)
		if value == "" {
			continue
		}
		t, err := util.ParseTimeFlexible(value)
		if err != nil {
			return req, fmt.Errorf("invalid %s: use ISO 8601 or epoch milliseconds", bound.param)
		}
		*bound.dst = &t
	}
	return req, nil
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

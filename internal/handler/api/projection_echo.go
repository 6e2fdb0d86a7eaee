package api

import (
	"context"
	"errors"
	"time"

	models "YieldProjector/internal/domain/models"
	"YieldProjector/internal/service/projection"
	"YieldProjector/internal/service/ratelimit"
	"YieldProjector/internal/usecase"
	xhttp "YieldProjector/pkg/http"
	xlogger "YieldProjector/pkg/logger"
	"YieldProjector/pkg/util"

	"github.com/labstack/echo/v4"
)

// HandlerConfig carries request defaults.
type HandlerConfig struct {
	DefaultAPR float64
	Location   *time.Location
}

// ProjectionEchoHandler serves market data and projections for the configured token.
type ProjectionEchoHandler struct {
	logger *xlogger.Logger
	svc    *usecase.ProjectionService
	rl     *ratelimit.Limiter
	cfg    HandlerConfig
}

func NewProjectionEchoHandler(logger *xlogger.Logger, svc *usecase.ProjectionService, rl *ratelimit.Limiter, cfg HandlerConfig) *ProjectionEchoHandler {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &ProjectionEchoHandler{logger: logger, svc: svc, rl: rl, cfg: cfg}
}

func (h *ProjectionEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api", h.rateLimit)
	g.GET("/stats", h.Stats)
	g.GET("/history", h.History)
	g.GET("/projection", h.Projection)
	g.POST("/refresh", h.Refresh)
}

func (h *ProjectionEchoHandler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.rl != nil && !h.rl.Allow(c.RealIP()) {
			h.logger.Warn("api rate_limited",
				xlogger.String("remote", c.RealIP()),
				xlogger.String("path", c.Path()),
			)
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limit exceeded"))
		}
		return next(c)
	}
}

func (h *ProjectionEchoHandler) Stats(c echo.Context) error {
	snap := h.svc.Snapshot(c.Request().Context())
	return xhttp.SuccessResponse(c, &models.StatsResponse{
		Stats:     snap.Stats,
		Source:    snap.StatsSource,
		Failures:  snap.Failures,
		FetchedAt: snap.FetchedAt,
	})
}

func (h *ProjectionEchoHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	snap := h.svc.Snapshot(c.Request().Context())
	points := snap.Series
	if req.Limit > 0 && req.Limit < len(points) {
		points = points[len(points)-req.Limit:]
	}
	return xhttp.SuccessResponse(c, &models.HistoryResponse{Points: points, Source: snap.SeriesSource})
}

func (h *ProjectionEchoHandler) Projection(c echo.Context) error {
	req := &models.ProjectionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if c.QueryParam("apr") == "" {
		req.APR = h.cfg.DefaultAPR
	}

	params := usecase.ProjectParams{
		Principal:          req.Principal,
		AnnualYieldPercent: req.APR,
		Compounding:        projection.Compounding(req.Compounding),
	}
	if req.Start != "" {
		start, ok := util.ParseDate(req.Start, h.cfg.Location)
		if !ok {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError("start", "start must be a date formatted as 2006-01-02"))
		}
		params.StartDate = start
	}

	res := h.svc.Project(c.Request().Context(), params)
	if res.Empty() {
		h.logger.Debug("projection empty",
			xlogger.Float64("principal", req.Principal),
			xlogger.Float64("apr", req.APR),
			xlogger.String("start", req.Start),
			xlogger.Bool("degraded", res.Degraded),
		)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ProjectionEchoHandler) Refresh(c echo.Context) error {
	snap, err := h.svc.Refresh(c.Request().Context())
	switch {
	case errors.Is(err, usecase.ErrRefreshSuperseded):
		return xhttp.AppErrorResponse(c, xhttp.ConflictError("refresh superseded by a newer request").WithError(err))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("refresh aborted").WithError(err))
	case err != nil:
		h.logger.Error("refresh usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, &models.StatsResponse{
		Stats:     snap.Stats,
		Source:    snap.StatsSource,
		Failures:  snap.Failures,
		FetchedAt: snap.FetchedAt,
	})
}

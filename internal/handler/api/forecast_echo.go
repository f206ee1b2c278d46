package api

import (
	"errors"
	"net/http"
	"time"

	"FinCast/internal/domain/models"
	"FinCast/internal/services/forecast"
	"FinCast/internal/usecase"
	xhttp "FinCast/pkg/http"
	xlogger "FinCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ForecastEchoHandler exposes forecasting and history over HTTP.
type ForecastEchoHandler struct {
	logger     *xlogger.Logger
	forecaster *forecast.Orchestrator
	history    *usecase.HistoryUsecase
	collector  *usecase.QuoteCollector
	started    time.Time
}

func NewForecastEchoHandler(logger *xlogger.Logger, f *forecast.Orchestrator, h *usecase.HistoryUsecase, c *usecase.QuoteCollector) *ForecastEchoHandler {
	return &ForecastEchoHandler{
		logger:     logger,
		forecaster: f,
		history:    h,
		collector:  c,
		started:    time.Now(),
	}
}

func (h *ForecastEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/forecast", h.Forecast)
	g.GET("/history", h.History)
	e.GET("/health", h.Health)
}

func (h *ForecastEchoHandler) Forecast(c echo.Context) error {
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.forecaster.Forecast(c.Request().Context(), req.Symbol, req.Days)
	if err != nil {
		if errors.Is(err, forecast.ErrEmptySymbol) || errors.Is(err, forecast.ErrInvalidHorizon) {
			return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
				Code:    "ERR_INVALID_REQUEST",
				Message: err.Error(),
			}})
		}
		h.logger.Error("forecast usecase error",
			xlogger.String("symbol", req.Symbol),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, models.ToForecastResponse(res))
}

func (h *ForecastEchoHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	obs, err := h.history.Recent(c.Request().Context(), req.Symbol, req.Limit)
	if err != nil {
		h.logger.Error("history usecase error",
			xlogger.String("symbol", req.Symbol),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, err)
	}

	resp := make([]models.ObservationResponse, 0, len(obs))
	for _, o := range obs {
		resp = append(resp, models.ObservationResponse{
			Symbol:    o.Symbol,
			Price:     o.Price,
			Volume:    o.Volume,
			Timestamp: o.Timestamp,
		})
	}
	return xhttp.SuccessResponse(c, resp)
}

// Health reports process uptime and stream connectivity.
func (h *ForecastEchoHandler) Health(c echo.Context) error {
	streamUp := false
	if h.collector != nil {
		streamUp = h.collector.IsConnected()
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":          "ok",
		"uptimeSeconds":   int(time.Since(h.started).Seconds()),
		"streamConnected": streamUp,
	})
}

package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/esidoc/hr-document-service/internal/stats"
)

// StatsHandler serves the dashboard summary.  Figures are recomputed on
// every call; there is no caching layer in front of the aggregator.
type StatsHandler struct {
	Aggregator *stats.Aggregator
}

func NewStatsHandler(a *stats.Aggregator) *StatsHandler {
	return &StatsHandler{Aggregator: a}
}

// Summary aggregates user, document and activity figures over a trailing
// window.  ?days= overrides the default window.
func (h *StatsHandler) Summary(c echo.Context) error {
	days := 0
	if raw := c.QueryParam("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "days must be a positive integer"})
		}
		days = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	s, err := h.Aggregator.Summarize(ctx, days)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "aggregation failed"})
	}
	return c.JSON(http.StatusOK, s)
}

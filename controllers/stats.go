package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"go-storefront/services"
)

// StatsController serves dashboard statistics
type StatsController struct {
	stats  *services.StatsService
	logger *slog.Logger
}

// NewStatsController creates a new StatsController
func NewStatsController(stats *services.StatsService, logger *slog.Logger) *StatsController {
	return &StatsController{stats: stats, logger: logger}
}

// UserStats returns one customer's payment, review and purchase totals.
func (sc *StatsController) UserStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	stats, err := sc.stats.UserStats(ctx, mux.Vars(r)["email"])
	if err != nil {
		writeError(w, r, sc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// AdminStats returns store-wide totals and monthly earnings.
func (sc *StatsController) AdminStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	stats, err := sc.stats.AdminStats(ctx)
	if err != nil {
		writeError(w, r, sc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

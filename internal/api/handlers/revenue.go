package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bess-analytics/internal/api/models"
	"bess-analytics/internal/config"
	"bess-analytics/internal/diag"
	"bess-analytics/internal/model"
	"bess-analytics/internal/pricing"
	"bess-analytics/internal/report"
	"bess-analytics/internal/revenue"
	"bess-analytics/internal/runner"
)

const defaultFallbackHub = "HB_HOUSTON"

// RevenueHandler handles reconciliation requests.
type RevenueHandler struct{}

func NewRevenueHandler() *RevenueHandler { return &RevenueHandler{} }

// RunRevenue handles POST /api/v1/revenue
func (h *RevenueHandler) RunRevenue(c *gin.Context) {
	var req models.RevenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err.Error())
		return
	}

	table, err := buildTable(req.Resources)
	if err != nil {
		badRequest(c, "INVALID_RESOURCES", err.Error())
		return
	}
	for _, o := range req.Overrides {
		if o.Resource == "" || o.SettlementPoint == "" {
			badRequest(c, "INVALID_OVERRIDES", "override entries need resource and settlement_point")
			return
		}
		table.Override(o.Resource, o.SettlementPoint)
	}

	granularity, err := config.MarketConfig{RTGranularity: req.Options.RTGranularity}.Granularity()
	if err != nil {
		badRequest(c, "INVALID_GRANULARITY", err.Error())
		return
	}

	hub := req.Options.FallbackHub
	if hub == "" {
		hub = defaultFallbackHub
	}

	reqDiag := diag.New()
	prices := parsePrices(req.Prices, reqDiag)
	index, err := pricing.Build(prices, hub)
	if err != nil {
		badRequest(c, "NO_PRICES", err.Error())
		return
	}

	awards, dispatch := parseSettlementInputs(req, reqDiag)

	rec, err := revenue.New(index, table, granularity)
	if err != nil {
		badRequest(c, "INVALID_RECONCILER", err.Error())
		return
	}

	acc, err := runner.Reconcile(c.Request.Context(), rec, awards, dispatch, req.Options.Workers)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "RECONCILIATION_ERROR",
				Message: err.Error(),
			},
		})
		return
	}
	acc.Diag.Merge(reqDiag)

	daily := acc.Daily()
	monthly := revenue.Monthly(daily, table)
	annual := revenue.Annual(monthly, table)

	resp := models.RevenueResponse{
		ID:          uuid.NewString(),
		Status:      "completed",
		Monthly:     monthly,
		Annual:      annual,
		Leaderboard: report.Leaderboard(annual),
		Issues:      revenue.DetectIssues(daily, table),
		Diagnostics: diagnostics(acc.Diag),
	}
	if req.Options.IncludeDaily {
		resp.Daily = daily
	}
	c.JSON(http.StatusOK, resp)
}

func parseSettlementInputs(req models.RevenueRequest, counters *diag.Counters) ([]model.AwardRecord, []model.DispatchInterval) {
	awards := make([]model.AwardRecord, 0, len(req.Awards))
	for _, a := range req.Awards {
		date, err := time.Parse("2006-01-02", a.Date)
		if err != nil {
			counters.CountMalformed("awards")
			continue
		}
		awards = append(awards, model.AwardRecord{
			ResourceID:    a.ResourceID,
			Date:          date.UTC(),
			Hour:          a.Hour,
			AwardMW:       a.AwardMW,
			ClearingPrice: a.ClearingPrice,
			Stream:        model.AwardStream(a.Stream),
		})
	}

	dispatch := make([]model.DispatchInterval, 0, len(req.Dispatch))
	for _, d := range req.Dispatch {
		ts, err := time.Parse(time.RFC3339, d.Timestamp)
		if err != nil {
			counters.CountMalformed("dispatch")
			continue
		}
		dispatch = append(dispatch, model.DispatchInterval{
			ResourceID: d.ResourceID,
			Timestamp:  ts.UTC(),
			SignedMW:   d.SignedMW,
		})
	}
	return awards, dispatch
}

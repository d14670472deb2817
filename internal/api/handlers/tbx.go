package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bess-analytics/internal/api/models"
	"bess-analytics/internal/config"
	"bess-analytics/internal/diag"
	"bess-analytics/internal/runner"
)

// TbxHandler handles valuation requests.
type TbxHandler struct{}

func NewTbxHandler() *TbxHandler { return &TbxHandler{} }

// RunTbx handles POST /api/v1/tbx
func (h *TbxHandler) RunTbx(c *gin.Context) {
	h.run(c, false)
}

// RunBlended handles POST /api/v1/blended: the same valuation with the
// blended DA+RT optimizer always on.
func (h *TbxHandler) RunBlended(c *gin.Context) {
	h.run(c, true)
}

func (h *TbxHandler) run(c *gin.Context, forceBlended bool) {
	var req models.TbxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err.Error())
		return
	}
	if forceBlended {
		req.Options.Blended = true
	}

	profile, err := config.ProfileConfig{
		Variant:             req.Profile.Variant,
		PowerMW:             req.Profile.PowerMW,
		RoundTripEfficiency: req.Profile.RoundTripEfficiency,
		MinSpreadThreshold:  req.Profile.MinSpreadThreshold,
	}.ToProfile()
	if err != nil {
		badRequest(c, "INVALID_PROFILE", err.Error())
		return
	}

	table, err := buildTable(req.Resources)
	if err != nil {
		badRequest(c, "INVALID_RESOURCES", err.Error())
		return
	}

	v := runner.Valuation{
		Profile: profile,
		Blended: req.Options.Blended,
		Workers: req.Options.Workers,
	}
	if req.Options.StartDate != "" {
		start, err := time.Parse("2006-01-02", req.Options.StartDate)
		if err != nil {
			badRequest(c, "INVALID_DATE", "start_date must be YYYY-MM-DD")
			return
		}
		v.Start = start.UTC()
	}
	if req.Options.EndDate != "" {
		end, err := time.Parse("2006-01-02", req.Options.EndDate)
		if err != nil {
			badRequest(c, "INVALID_DATE", "end_date must be YYYY-MM-DD")
			return
		}
		v.End = end.UTC()
	}

	reqDiag := diag.New()
	prices := parsePrices(req.Prices, reqDiag)
	if len(prices) == 0 {
		badRequest(c, "NO_PRICES", "no usable price records in request")
		return
	}

	results, runDiag, err := runner.RunTBX(c.Request.Context(), prices, table, v)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "VALUATION_ERROR",
				Message: err.Error(),
			},
		})
		return
	}
	runDiag.Merge(reqDiag)

	summary := models.TbxSummary{Resources: table.Len(), Days: len(results)}
	for i := range results {
		summary.RevenueDA += results[i].RevenueDA
		summary.RevenueRT += results[i].RevenueRT
		summary.RevenueBlended += results[i].RevenueBlended
		summary.BestRevenue += results[i].BestRevenue()
		if !req.Options.IncludeWindows {
			results[i].DAWindows = nil
			results[i].RTWindows = nil
			results[i].BlendedWindows = nil
		}
	}

	c.JSON(http.StatusOK, models.TbxResponse{
		ID:          uuid.NewString(),
		Status:      "completed",
		Results:     results,
		Summary:     summary,
		Diagnostics: diagnostics(runDiag),
	})
}

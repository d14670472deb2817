package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bess-analytics/internal/api/models"
	"bess-analytics/internal/diag"
	"bess-analytics/internal/mapping"
	"bess-analytics/internal/model"
)

func badRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// buildTable turns inline resource records into the mapping table used by
// the core packages.
func buildTable(resources []models.ResourceRecord) (*mapping.Table, error) {
	if len(resources) == 0 {
		return nil, fmt.Errorf("at least one resource is required")
	}
	t := mapping.NewTable()
	for _, r := range resources {
		if r.Name == "" || r.SettlementPoint == "" {
			return nil, fmt.Errorf("resource entries need name and settlement_point")
		}
		t.Add(mapping.Resource{
			Name:            r.Name,
			SettlementPoint: r.SettlementPoint,
			CapacityMW:      r.CapacityMW,
			DurationHours:   r.DurationHours,
		})
	}
	return t, nil
}

// parsePrices converts inline price records. Unparseable rows are counted
// against the request rather than failing it, matching file ingestion.
func parsePrices(records []models.PriceRecord, counters *diag.Counters) []model.PricePoint {
	out := make([]model.PricePoint, 0, len(records))
	for _, r := range records {
		market := model.Market(r.Market)
		if !market.Valid() {
			counters.CountMalformed("prices")
			continue
		}
		ts, err := time.Parse(time.RFC3339, r.Timestamp)
		if err != nil {
			counters.CountMalformed("prices")
			continue
		}
		out = append(out, model.PricePoint{
			Timestamp:       ts.UTC(),
			SettlementPoint: r.SettlementPoint,
			Price:           r.Price,
			Market:          market,
		})
	}
	return out
}

func diagnostics(c *diag.Counters) models.Diagnostics {
	d := models.Diagnostics{
		MissingPrices:     c.MissingPrices,
		HubFallbacks:      c.HubFallbacks,
		UnmappedResources: c.UnmappedResources,
		SkippedDays:       c.SkippedDays,
	}
	if len(c.Malformed) > 0 {
		d.MalformedRows = c.Malformed
	}
	return d
}

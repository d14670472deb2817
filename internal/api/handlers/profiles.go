package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bess-analytics/internal/api/models"
	"bess-analytics/internal/model"
)

// ProfileHandler serves the battery preset catalog.
type ProfileHandler struct{}

func NewProfileHandler() *ProfileHandler { return &ProfileHandler{} }

// ListProfiles handles GET /api/v1/profiles. Presets are shown at a 100 MW
// nameplate; power scales linearly in every valuation.
func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	const referencePowerMW = 100.0
	presets := map[string]model.BatteryProfile{
		"TB1": model.NewTB1(referencePowerMW),
		"TB2": model.NewTB2(referencePowerMW),
		"TB4": model.NewTB4(referencePowerMW),
	}

	out := make([]models.ProfileInfo, 0, len(presets))
	for _, variant := range []string{"TB1", "TB2", "TB4"} {
		p := presets[variant]
		out = append(out, models.ProfileInfo{
			Variant:             variant,
			DurationHours:       float64(p.DurationHours),
			PowerMW:             p.PowerMW,
			CapacityMWh:         p.CapacityMWh,
			RoundTripEfficiency: p.RoundTripEfficiency,
			MinSpreadThreshold:  p.MinSpreadThresholdUSD,
		})
	}
	c.JSON(http.StatusOK, gin.H{"profiles": out})
}

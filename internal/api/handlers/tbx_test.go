package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bess-analytics/internal/api/models"
)

func tbxRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/v1/tbx", NewTbxHandler().RunTbx)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func spikyPriceRecords() []models.PriceRecord {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.PriceRecord, 0, 24)
	for h := 0; h < 24; h++ {
		price := 50.0
		switch h {
		case 2, 3:
			price = 20
		case 18, 19:
			price = 100
		}
		out = append(out, models.PriceRecord{
			Timestamp:       day.Add(time.Duration(h) * time.Hour).Format(time.RFC3339),
			SettlementPoint: "RN_BATCAVE",
			Price:           price,
			Market:          "DAM",
		})
	}
	return out
}

func TestRunTbx(t *testing.T) {
	req := models.TbxRequest{
		Profile:   models.ProfileConfig{Variant: "TB2", PowerMW: 100},
		Resources: []models.ResourceRecord{{Name: "BATCAVE_BES1", SettlementPoint: "RN_BATCAVE", CapacityMW: 100}},
		Prices:    spikyPriceRecords(),
	}

	w := postJSON(t, tbxRouter(), "/api/v1/tbx", req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.TbxResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "completed", resp.Status)
	require.Len(t, resp.Results, 1)
	assert.InDelta(t, 13600.0, resp.Results[0].RevenueDA, 1e-6)
	assert.InDelta(t, 13600.0, resp.Summary.RevenueDA, 1e-6)
	// Windows are stripped unless requested.
	assert.Empty(t, resp.Results[0].DAWindows)
}

func TestRunTbxRejectsBadProfile(t *testing.T) {
	req := models.TbxRequest{
		Profile:   models.ProfileConfig{Variant: "TB3", PowerMW: 100},
		Resources: []models.ResourceRecord{{Name: "X", SettlementPoint: "RN_X"}},
		Prices:    spikyPriceRecords(),
	}
	w := postJSON(t, tbxRouter(), "/api/v1/tbx", req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_PROFILE", resp.Error.Code)
}

func TestRunTbxRejectsEmptyPrices(t *testing.T) {
	req := models.TbxRequest{
		Profile:   models.ProfileConfig{Variant: "TB2", PowerMW: 100},
		Resources: []models.ResourceRecord{{Name: "X", SettlementPoint: "RN_X"}},
	}
	w := postJSON(t, tbxRouter(), "/api/v1/tbx", req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

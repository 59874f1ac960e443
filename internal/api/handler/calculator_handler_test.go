package handler_test

import (
	"agv-finance/internal/api/handler"
	"agv-finance/internal/api/handler/dto"
	"agv-finance/internal/domain/loan"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateEMI(t *testing.T) {
	t.Run("Without schedule", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/calculators/emi?principal=100000&rate=12&tenure=12", nil)
		rr := httptest.NewRecorder()

		handler.CalculateEMI(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp dto.EMIResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "8884.88", resp.EMI.StringFixed(2))
		assert.Equal(t, "106618.56", resp.TotalPayment.StringFixed(2))
		assert.Equal(t, "6618.56", resp.TotalInterest.StringFixed(2))
		assert.Empty(t, resp.Schedule)
	})

	t.Run("With schedule", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/calculators/emi?principal=1,00,000&rate=12&tenure=12&schedule=true", nil)
		rr := httptest.NewRecorder()

		handler.CalculateEMI(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp dto.EMIResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp.Schedule, 12)
		assert.True(t, resp.Schedule[11].Balance.IsZero())
	})

	t.Run("Invalid inputs reported per field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/calculators/emi?principal=10&rate=abc&tenure=0", nil)
		rr := httptest.NewRecorder()

		handler.CalculateEMI(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		resp := decodeError(t, rr)
		assert.Contains(t, resp.Error.Fields, "principal")
		assert.Contains(t, resp.Error.Fields, "rate")
		assert.Contains(t, resp.Error.Fields, "tenure")
	})
}

func TestCalculatorHandler_GoldLoan(t *testing.T) {
	h := handler.NewCalculatorHandler(loan.NewGoldRates(7000, 75))

	t.Run("Desk rate", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.GoldLoan(rr, httptest.NewRequest(http.MethodGet, "/api/calculators/gold?weight=10&karat=22", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp loan.GoldValuation
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "9.167", resp.FineGrams.StringFixed(3))
		assert.Equal(t, "64169.00", resp.MarketValue.StringFixed(2))
		assert.Equal(t, "48126.75", resp.EligibleAmount.StringFixed(2))
	})

	t.Run("Rate and ltv override", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.GoldLoan(rr, httptest.NewRequest(http.MethodGet, "/api/calculators/gold?weight=20&karat=24k&ltv=50&rate_per_gram=6000", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp loan.GoldValuation
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "120000.00", resp.MarketValue.StringFixed(2))
		assert.Equal(t, "60000.00", resp.EligibleAmount.StringFixed(2))
	})

	t.Run("Invalid inputs reported per field", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.GoldLoan(rr, httptest.NewRequest(http.MethodGet, "/api/calculators/gold?weight=0&karat=21&ltv=120", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		resp := decodeError(t, rr)
		assert.Contains(t, resp.Error.Fields, "weight")
		assert.Contains(t, resp.Error.Fields, "karat")
		assert.Contains(t, resp.Error.Fields, "ltv")
	})
}

func TestConvertGold(t *testing.T) {
	t.Run("Lower purity", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ConvertGold(rr, httptest.NewRequest(http.MethodGet, "/api/calculators/gold-conversion?weight=11&from_karat=24&to_karat=22", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp loan.GoldConversion
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "12.000", resp.ConvertedGrams.StringFixed(3))
		assert.Equal(t, "1.000", resp.AlloyGrams.StringFixed(3))
	})

	t.Run("Missing target karat", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ConvertGold(rr, httptest.NewRequest(http.MethodGet, "/api/calculators/gold-conversion?weight=11&from_karat=24", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeError(t, rr).Error.Fields, "to_karat")
	})
}

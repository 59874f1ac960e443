package handler

import (
	"agv-finance/internal/api/handler/dto"
	"agv-finance/internal/domain/loan"
	"agv-finance/internal/pkg/validation"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// emiFromQuery validates principal, rate and tenure and computes the EMI.
// The schedule is included when withSchedule is set.
func emiFromQuery(q url.Values, withSchedule bool, now time.Time) (dto.EMIResponse, validation.Fields) {
	fields := validation.Fields{}
	principal, err := validation.Amount(q.Get("principal"), validation.MinLoanAmount, validation.MaxLoanAmount)
	fields.Check("principal", err)
	rate, err := validation.InterestRate(q.Get("rate"))
	fields.Check("rate", err)
	tenure, err := validation.Tenure(q.Get("tenure"))
	fields.Check("tenure", err)
	if len(fields) > 0 {
		return dto.EMIResponse{}, fields
	}

	res, err := loan.CalculateEMI(principal, rate, tenure)
	if err != nil {
		fields["general"] = err.Error()
		return dto.EMIResponse{}, fields
	}
	out := dto.EMIResponse{
		Principal:     principal,
		Rate:          rate,
		Tenure:        tenure,
		EMI:           res.EMI,
		TotalPayment:  res.TotalPayment,
		TotalInterest: res.TotalInterest,
	}
	if withSchedule {
		items, err := loan.GenerateSchedule(principal, rate, tenure, loan.DateOf(now))
		if err == nil {
			out.Schedule = dto.NewInstallmentResponses(items)
		}
	}
	return out, nil
}

// CalculateEMI handles GET /api/calculators/emi
// @Summary EMI calculator
// @Description Equated monthly installment for a principal, annual rate and tenure in months.
// @Tags Calculators
// @Produce json
// @Param principal query number true "Principal amount"
// @Param rate query number true "Annual interest rate (percent)"
// @Param tenure query int true "Tenure in months"
// @Param schedule query bool false "Include the amortisation schedule"
// @Success 200 {object} dto.EMIResponse "EMI"
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Router /api/calculators/emi [get]
// @Security SessionCookie
func CalculateEMI(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	withSchedule, _ := strconv.ParseBool(q.Get("schedule"))
	res, fields := emiFromQuery(q, withSchedule, time.Now())
	if len(fields) > 0 {
		respondError(w, fields.Err())
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// goldLoanFromQuery values pledged gold from weight, karat and an optional
// ltv and rate_per_gram; the desk rates fill in what is missing.
func goldLoanFromQuery(q url.Values, rates loan.GoldRates) (loan.GoldValuation, validation.Fields) {
	fields := validation.Fields{}
	weight, err := validation.GoldWeight(q.Get("weight"))
	fields.Check("weight", err)
	karat, err := validation.Karat(q.Get("karat"))
	fields.Check("karat", err)
	ltv, err := validation.Percent(q.Get("ltv"))
	fields.Check("ltv", err)
	if raw := q.Get("rate_per_gram"); raw != "" {
		rate, err := validation.Amount(raw, decimal.NewFromInt(1), validation.MaxLoanAmount)
		fields.Check("rate_per_gram", err)
		rates.RatePerGram = rate
	}
	if len(fields) > 0 {
		return loan.GoldValuation{}, fields
	}

	res, err := rates.ValueGold(weight, karat, ltv)
	if err != nil {
		fields["general"] = err.Error()
		return loan.GoldValuation{}, fields
	}
	return res, nil
}

func goldConversionFromQuery(q url.Values) (loan.GoldConversion, validation.Fields) {
	fields := validation.Fields{}
	weight, err := validation.GoldWeight(q.Get("weight"))
	fields.Check("weight", err)
	from, err := validation.Karat(q.Get("from_karat"))
	fields.Check("from_karat", err)
	to, err := validation.Karat(q.Get("to_karat"))
	fields.Check("to_karat", err)
	if len(fields) > 0 {
		return loan.GoldConversion{}, fields
	}

	res, err := loan.ConvertGold(weight, from, to)
	if err != nil {
		fields["general"] = err.Error()
		return loan.GoldConversion{}, fields
	}
	return res, nil
}

// CalculatorHandler serves the calculators that depend on desk settings.
type CalculatorHandler struct {
	gold loan.GoldRates
}

func NewCalculatorHandler(gold loan.GoldRates) *CalculatorHandler {
	return &CalculatorHandler{gold: gold}
}

// GoldLoan handles GET /api/calculators/gold
// @Summary Gold loan calculator
// @Description Market value of pledged gold and the loan it supports at the desk rate.
// @Tags Calculators
// @Produce json
// @Param weight query number true "Weight in grams"
// @Param karat query int true "Purity in karats (24, 22, 20, 18, 14)"
// @Param ltv query number false "Loan-to-value percent, capped at the desk maximum"
// @Param rate_per_gram query number false "24K rate per gram, defaults to the desk rate"
// @Success 200 {object} loan.GoldValuation "Valuation"
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Router /api/calculators/gold [get]
// @Security SessionCookie
func (h *CalculatorHandler) GoldLoan(w http.ResponseWriter, r *http.Request) {
	res, fields := goldLoanFromQuery(r.URL.Query(), h.gold)
	if len(fields) > 0 {
		respondError(w, fields.Err())
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// ConvertGold handles GET /api/calculators/gold-conversion
// @Summary Gold purity conversion
// @Description Weight of gold at another purity holding the same fine gold.
// @Tags Calculators
// @Produce json
// @Param weight query number true "Weight in grams"
// @Param from_karat query int true "Current purity in karats"
// @Param to_karat query int true "Target purity in karats"
// @Success 200 {object} loan.GoldConversion "Conversion"
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Router /api/calculators/gold-conversion [get]
// @Security SessionCookie
func ConvertGold(w http.ResponseWriter, r *http.Request) {
	res, fields := goldConversionFromQuery(r.URL.Query())
	if len(fields) > 0 {
		respondError(w, fields.Err())
		return
	}
	respondJSON(w, http.StatusOK, res)
}

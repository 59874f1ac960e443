// Package validation holds the field rules shared by the HTML forms and the
// JSON API: Indian mobile numbers, PAN and Aadhaar identifiers, person names,
// money amounts, interest rates, tenures and dates.
package validation

import (
	"agv-finance/internal/pkg/apperrors"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

const (
	DefaultMaxFileSize int64 = 5 * 1024 * 1024
	MaxTenureMonths          = 360
	MaxPastYears             = 50
)

var (
	mobilePattern  = regexp.MustCompile(`^[6-9]\d{9}$`)
	emailPattern   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	panPattern     = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	aadhaarPattern = regexp.MustCompile(`^\d{12}$`)
	namePattern    = regexp.MustCompile(`^[a-zA-Z\s.\-']+$`)
	nonDigit       = regexp.MustCompile(`\D`)
)

var (
	MinLoanAmount    = decimal.NewFromInt(1000)
	MaxLoanAmount    = decimal.NewFromInt(10_000_000)
	MinPaymentAmount = decimal.RequireFromString("0.01")
	MaxPaymentAmount = decimal.NewFromInt(10_000_000)
	maxInterestRate  = decimal.NewFromInt(100)
)

var LoanTypes = []string{"gold", "personal", "business", "vehicle"}

var PaymentMethods = []string{"cash", "upi", "bank_transfer", "cheque", "card"}

// Karats accepted for pledged gold, purest first.
var Karats = []int{24, 22, 20, 18, 14}

var (
	maxGoldWeight = decimal.NewFromInt(100_000)
	minGoldWeight = decimal.RequireFromString("0.001")
)

// Mobile strips formatting and returns the bare 10 digit number.
func Mobile(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", errors.New("Mobile number is required")
	}
	digits := nonDigit.ReplaceAllString(s, "")
	if len(digits) == 11 && digits[0] == '0' {
		digits = digits[1:]
	}
	if !mobilePattern.MatchString(digits) {
		return "", errors.New("Invalid mobile number format (should be 10 digits starting with 6-9)")
	}
	return digits, nil
}

// OptionalMobile accepts an empty value.
func OptionalMobile(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return Mobile(s)
}

func Email(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if !emailPattern.MatchString(s) {
		return "", errors.New("Invalid email format")
	}
	return strings.ToLower(s), nil
}

func PAN(s string) (string, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	if !panPattern.MatchString(s) {
		return "", errors.New("Invalid PAN format (should be like ABCDE1234F)")
	}
	return s, nil
}

func Aadhaar(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	digits := nonDigit.ReplaceAllString(s, "")
	if !aadhaarPattern.MatchString(digits) {
		return "", errors.New("Invalid Aadhaar format (should be 12 digits)")
	}
	return digits, nil
}

// Name trims, checks length and characters, and title-cases the result.
func Name(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("Name is required")
	}
	if len(s) < 2 {
		return "", errors.New("Name must be at least 2 characters")
	}
	if len(s) > 100 {
		return "", errors.New("Name cannot exceed 100 characters")
	}
	if !namePattern.MatchString(s) {
		return "", errors.New("Name contains invalid characters")
	}
	return titleCase(s), nil
}

func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}

func Amount(s string, min, max decimal.Decimal) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(strings.ReplaceAll(s, ",", "")))
	if err != nil {
		return decimal.Zero, errors.New("Invalid amount format")
	}
	return amount, AmountRange(amount, min, max)
}

func AmountRange(amount, min, max decimal.Decimal) error {
	if amount.LessThan(min) {
		return fmt.Errorf("Amount must be at least ₹%s", min.StringFixed(2))
	}
	if amount.GreaterThan(max) {
		return fmt.Errorf("Amount cannot exceed ₹%s", max.StringFixed(2))
	}
	return nil
}

func InterestRate(s string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, errors.New("Invalid interest rate format")
	}
	return rate, InterestRateRange(rate)
}

func InterestRateRange(rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return errors.New("Interest rate must be greater than 0")
	}
	if rate.GreaterThan(maxInterestRate) {
		return errors.New("Interest rate cannot exceed 100%")
	}
	return nil
}

func Tenure(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.New("Invalid tenure format")
	}
	return n, TenureMonths(n)
}

func TenureMonths(n int) error {
	if n <= 0 {
		return errors.New("Tenure must be greater than 0")
	}
	if n > MaxTenureMonths {
		return errors.New("Tenure cannot exceed 360 months (30 years)")
	}
	return nil
}

// GoldWeight parses a weight in grams, up to three decimals.
func GoldWeight(s string) (decimal.Decimal, error) {
	w, err := decimal.NewFromString(strings.TrimSpace(strings.ReplaceAll(s, ",", "")))
	if err != nil {
		return decimal.Zero, errors.New("Invalid weight format")
	}
	if w.LessThan(minGoldWeight) {
		return decimal.Zero, errors.New("Weight must be greater than 0")
	}
	if w.GreaterThan(maxGoldWeight) {
		return decimal.Zero, errors.New("Weight cannot exceed 100000 grams")
	}
	return w.Round(3), nil
}

func Karat(s string) (int, error) {
	k, err := strconv.Atoi(strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(s)), "K"))
	if err != nil || !slices.Contains(Karats, k) {
		return 0, errors.New("Invalid karat. Valid values: 24, 22, 20, 18, 14")
	}
	return k, nil
}

// Percent parses an optional percentage in [0, 100]; empty means zero.
func Percent(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	p, err := decimal.NewFromString(s)
	if err != nil || p.IsNegative() || p.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, errors.New("Percentage must be between 0 and 100")
	}
	return p, nil
}

// Date parses YYYY-MM-DD or RFC 3339 input.
func Date(s string, allowFuture bool, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		d, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, errors.New("Invalid date format")
		}
	}
	return d, DateRange(d, allowFuture, now)
}

// DateRange compares calendar days: d by its own date, now by the date on
// the desk's wall clock.
func DateRange(d time.Time, allowFuture bool, now time.Time) error {
	day := calendarDay(d)
	today := calendarDay(now)
	if !allowFuture && day.After(today) {
		return errors.New("Date cannot be in the future")
	}
	if day.Before(today.AddDate(-MaxPastYears, 0, 0)) {
		return errors.New("Date is too far in the past")
	}
	return nil
}

func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func FileSize(size, max int64) error {
	if max <= 0 {
		max = DefaultMaxFileSize
	}
	if size > max {
		return fmt.Errorf("File size exceeds %dMB limit", max/(1024*1024))
	}
	return nil
}

func LoanType(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range LoanTypes {
		if s == t {
			return s, nil
		}
	}
	return "", fmt.Errorf("Invalid loan type. Valid types: %s", strings.Join(LoanTypes, ", "))
}

func PaymentMethod(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "cash", nil
	}
	for _, m := range PaymentMethods {
		if s == m {
			return s, nil
		}
	}
	return "", fmt.Errorf("Invalid payment method. Valid methods: %s", strings.Join(PaymentMethods, ", "))
}

// Fields collects per-field messages for a whole form.
type Fields map[string]string

func (f Fields) Check(field string, err error) {
	if err != nil {
		if _, exists := f[field]; !exists {
			f[field] = err.Error()
		}
	}
}

func (f Fields) Err() error {
	return apperrors.NewFieldErrors(f)
}

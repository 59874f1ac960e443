package validation

import (
	"agv-finance/internal/pkg/apperrors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMobile(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr string
	}{
		{in: "9876543210", want: "9876543210"},
		{in: "+91 98765-43210", wantErr: "Invalid mobile number format (should be 10 digits starting with 6-9)"},
		{in: "09876543210", want: "9876543210"},
		{in: "(987) 654-3210", want: "9876543210"},
		{in: "5876543210", wantErr: "Invalid mobile number format (should be 10 digits starting with 6-9)"},
		{in: "98765", wantErr: "Invalid mobile number format (should be 10 digits starting with 6-9)"},
		{in: "  ", wantErr: "Mobile number is required"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Mobile(tt.in)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := OptionalMobile("")
	assert.NoError(t, err)
	assert.Empty(t, got)
}

func TestIdentityDocuments(t *testing.T) {
	pan, err := PAN(" abcde1234f ")
	require.NoError(t, err)
	assert.Equal(t, "ABCDE1234F", pan)

	_, err = PAN("ABCD1234F")
	assert.EqualError(t, err, "Invalid PAN format (should be like ABCDE1234F)")

	pan, err = PAN("")
	assert.NoError(t, err)
	assert.Empty(t, pan)

	aadhaar, err := Aadhaar("1234 5678 9012")
	require.NoError(t, err)
	assert.Equal(t, "123456789012", aadhaar)

	_, err = Aadhaar("1234-5678")
	assert.EqualError(t, err, "Invalid Aadhaar format (should be 12 digits)")
}

func TestEmail(t *testing.T) {
	got, err := Email(" Ravi.Kumar@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "ravi.kumar@example.com", got)

	_, err = Email("ravi@")
	assert.EqualError(t, err, "Invalid email format")

	got, err = Email("")
	assert.NoError(t, err)
	assert.Empty(t, got)
}

func TestName(t *testing.T) {
	got, err := Name("  ravi o'neil-kumar ")
	require.NoError(t, err)
	assert.Equal(t, "Ravi O'Neil-Kumar", got)

	got, err = Name("S. RAMESH")
	require.NoError(t, err)
	assert.Equal(t, "S. Ramesh", got)

	_, err = Name("R")
	assert.EqualError(t, err, "Name must be at least 2 characters")

	_, err = Name("Ravi2")
	assert.EqualError(t, err, "Name contains invalid characters")

	_, err = Name("")
	assert.EqualError(t, err, "Name is required")
}

func TestAmount(t *testing.T) {
	amount, err := Amount("50,000.50", MinLoanAmount, MaxLoanAmount)
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.RequireFromString("50000.50")))

	_, err = Amount("999", MinLoanAmount, MaxLoanAmount)
	assert.EqualError(t, err, "Amount must be at least ₹1000.00")

	_, err = Amount("10000001", MinLoanAmount, MaxLoanAmount)
	assert.EqualError(t, err, "Amount cannot exceed ₹10000000.00")

	_, err = Amount("abc", MinPaymentAmount, MaxPaymentAmount)
	assert.EqualError(t, err, "Invalid amount format")
}

func TestInterestRateAndTenure(t *testing.T) {
	_, err := InterestRate("12.5")
	assert.NoError(t, err)
	_, err = InterestRate("0")
	assert.EqualError(t, err, "Interest rate must be greater than 0")
	_, err = InterestRate("100.01")
	assert.EqualError(t, err, "Interest rate cannot exceed 100%")
	_, err = InterestRate("x")
	assert.EqualError(t, err, "Invalid interest rate format")

	n, err := Tenure("12")
	assert.NoError(t, err)
	assert.Equal(t, 12, n)
	_, err = Tenure("0")
	assert.EqualError(t, err, "Tenure must be greater than 0")
	_, err = Tenure("361")
	assert.EqualError(t, err, "Tenure cannot exceed 360 months (30 years)")
	_, err = Tenure("twelve")
	assert.EqualError(t, err, "Invalid tenure format")
}

func TestDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	d, err := Date("2025-06-01", false, now)
	require.NoError(t, err)
	assert.Equal(t, 2025, d.Year())

	_, err = Date("2025-06-01T10:00:00Z", false, now)
	assert.NoError(t, err)

	_, err = Date("2025-07-01", false, now)
	assert.EqualError(t, err, "Date cannot be in the future")

	_, err = Date("2025-07-01", true, now)
	assert.NoError(t, err)

	_, err = Date("1970-01-01", true, now)
	assert.EqualError(t, err, "Date is too far in the past")

	_, err = Date("01/06/2025", true, now)
	assert.EqualError(t, err, "Invalid date format")
}

func TestDate_TodayAheadOfUTC(t *testing.T) {
	ist := time.FixedZone("IST", 5*60*60+30*60)
	now := time.Date(2025, 3, 10, 2, 0, 0, 0, ist)

	d, err := Date("2025-03-10", false, now)
	require.NoError(t, err)
	assert.Equal(t, 10, d.Day())

	_, err = Date("2025-03-11", false, now)
	assert.EqualError(t, err, "Date cannot be in the future")

	assert.NoError(t, DateRange(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), false, now))
}

func TestDate_TodayBehindUTC(t *testing.T) {
	pst := time.FixedZone("PST", -8*60*60)
	now := time.Date(2025, 3, 9, 22, 0, 0, 0, pst)

	_, err := Date("2025-03-10", false, now)
	assert.EqualError(t, err, "Date cannot be in the future")

	_, err = Date("2025-03-09", false, now)
	assert.NoError(t, err)
}

func TestGoldInputs(t *testing.T) {
	w, err := GoldWeight(" 12.3456 ")
	require.NoError(t, err)
	assert.Equal(t, "12.346", w.String())
	_, err = GoldWeight("0")
	assert.EqualError(t, err, "Weight must be greater than 0")
	_, err = GoldWeight("200000")
	assert.EqualError(t, err, "Weight cannot exceed 100000 grams")
	_, err = GoldWeight("ten")
	assert.EqualError(t, err, "Invalid weight format")

	k, err := Karat("22k")
	require.NoError(t, err)
	assert.Equal(t, 22, k)
	_, err = Karat("23")
	assert.Error(t, err)

	p, err := Percent("")
	require.NoError(t, err)
	assert.True(t, p.IsZero())
	_, err = Percent("101")
	assert.EqualError(t, err, "Percentage must be between 0 and 100")
}

func TestEnumsAndFileSize(t *testing.T) {
	lt, err := LoanType("Gold")
	require.NoError(t, err)
	assert.Equal(t, "gold", lt)
	_, err = LoanType("house")
	assert.EqualError(t, err, "Invalid loan type. Valid types: gold, personal, business, vehicle")

	m, err := PaymentMethod("")
	require.NoError(t, err)
	assert.Equal(t, "cash", m)
	_, err = PaymentMethod("crypto")
	assert.Error(t, err)

	assert.NoError(t, FileSize(1024, 0))
	assert.EqualError(t, FileSize(6*1024*1024, 0), "File size exceeds 5MB limit")
}

func TestFields(t *testing.T) {
	f := Fields{}
	assert.NoError(t, f.Err())

	_, err := Mobile("123")
	f.Check("mobile", err)
	f.Check("pan", nil)

	assert.Len(t, f, 1)
	assert.ErrorIs(t, f.Err(), apperrors.ErrValidation)
}

type customerForm struct {
	Name     string `json:"name" validate:"required,personname"`
	Mobile   string `json:"mobile" validate:"required,mobile"`
	Email    string `json:"email" validate:"omitempty,email"`
	PAN      string `json:"pan_number" validate:"omitempty,pan"`
	Aadhaar  string `json:"aadhar_number" validate:"omitempty,aadhaar"`
	LoanType string `json:"loan_type" validate:"omitempty,loantype"`
}

func TestStruct(t *testing.T) {
	fields := Struct(customerForm{Name: "Ravi Kumar", Mobile: "9876543210", PAN: "ABCDE1234F"})
	assert.Empty(t, fields)

	fields = Struct(customerForm{Name: "R", Mobile: "123", PAN: "bad", Aadhaar: "12", LoanType: "house", Email: "x@"})
	assert.Equal(t, "Name must be at least 2 characters", fields["name"])
	assert.Equal(t, "Invalid mobile number format (should be 10 digits starting with 6-9)", fields["mobile"])
	assert.Equal(t, "Invalid PAN format (should be like ABCDE1234F)", fields["pan_number"])
	assert.Equal(t, "Invalid Aadhaar format (should be 12 digits)", fields["aadhar_number"])
	assert.Equal(t, "Invalid email format", fields["email"])
	assert.Contains(t, fields["loan_type"], "Invalid loan type")

	fields = Struct(customerForm{})
	assert.Equal(t, "Field 'name' is required", fields["name"])
	assert.Equal(t, "Field 'mobile' is required", fields["mobile"])
}

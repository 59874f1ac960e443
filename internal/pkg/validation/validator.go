package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared struct validator with the domain tags
// registered: mobile, pan, aadhaar, personname, loantype, paymentmethod.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
		register(v, "mobile", func(s string) error { _, err := Mobile(s); return err })
		register(v, "pan", func(s string) error { _, err := PAN(s); return err })
		register(v, "aadhaar", func(s string) error { _, err := Aadhaar(s); return err })
		register(v, "personname", func(s string) error { _, err := Name(s); return err })
		register(v, "loantype", func(s string) error { _, err := LoanType(s); return err })
		register(v, "paymentmethod", func(s string) error { _, err := PaymentMethod(s); return err })
		instance = v
	})
	return instance
}

func register(v *validator.Validate, tag string, check func(string) error) {
	_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return check(fl.Field().String()) == nil
	})
}

// Struct validates a request struct and converts failures into Fields.
func Struct(s any) Fields {
	fields := Fields{}
	err := Validator().Struct(s)
	if err == nil {
		return fields
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["general"] = err.Error()
		return fields
	}
	for _, fe := range verrs {
		fields[fe.Field()] = messageFor(fe)
	}
	return fields
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Field '" + fe.Field() + "' is required"
	case "mobile":
		return "Invalid mobile number format (should be 10 digits starting with 6-9)"
	case "pan":
		return "Invalid PAN format (should be like ABCDE1234F)"
	case "aadhaar":
		return "Invalid Aadhaar format (should be 12 digits)"
	case "personname":
		_, err := Name(fe.Value().(string))
		return err.Error()
	case "loantype":
		return "Invalid loan type. Valid types: " + strings.Join(LoanTypes, ", ")
	case "paymentmethod":
		return "Invalid payment method. Valid methods: " + strings.Join(PaymentMethods, ", ")
	case "email":
		return "Invalid email format"
	case "uuid", "uuid4":
		return "Invalid identifier"
	case "min", "gte":
		return "Value must be at least " + fe.Param()
	case "max", "lte":
		return "Value cannot exceed " + fe.Param()
	default:
		return "Invalid value"
	}
}

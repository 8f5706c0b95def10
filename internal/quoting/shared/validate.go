package shared

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	internalShared "github.com/odyssey-erp/bodyshop/internal/shared"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the process-wide validator configured for decimal amounts and JSON field names.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{}, decimal.NullDecimal{})
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		validate = v
	})
	return validate
}

// decimalValue lets numeric tags such as gte=0 apply to decimal fields.
func decimalValue(field reflect.Value) interface{} {
	switch v := field.Interface().(type) {
	case decimal.Decimal:
		return orderedFloat(v)
	case decimal.NullDecimal:
		if !v.Valid {
			return nil
		}
		return orderedFloat(v.Decimal)
	}
	return nil
}

// orderedFloat converts d to the float64 nearest to it, stepped one ulp towards d when
// rounding landed on the other side or on a representable bound. A tag bound that is a
// float64 therefore compares against d exactly: -1e-400 stays below 0 and
// 1.00000000000000000001 stays above 1.
func orderedFloat(d decimal.Decimal) float64 {
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return f
	}
	switch decimal.NewFromFloat(f).Cmp(d) {
	case -1:
		return math.Nextafter(f, math.Inf(1))
	case 1:
		return math.Nextafter(f, math.Inf(-1))
	}
	return f
}

// ValidateStruct runs struct validation and converts failures into a *ValidationError keyed by
// the field's JSON path.
func ValidateStruct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	verr := &internalShared.ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		verr.Fields[fieldPath(fe.Namespace())] = describe(fe)
	}
	return verr
}

func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "uuid":
		return "must be a UUID"
	default:
		return "failed " + fe.Tag()
	}
}

// Package validation builds the request validator shared by the services.
// decimal.Decimal fields are validated through the decimal_gt, decimal_gte
// and decimal_scale tags, e.g. `validate:"decimal_gt=0,decimal_scale=2"`.
package validation

import (
	"reflect"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// New returns a validator with the decimal tags registered.
func New() *validator.Validate {
	v := validator.New()

	// Decimals are validated on their string form so the struct is not
	// traversed field by field.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("decimal_gt", compareDecimal(func(value, param decimal.Decimal) bool {
		return value.GreaterThan(param)
	}))
	_ = v.RegisterValidation("decimal_gte", compareDecimal(func(value, param decimal.Decimal) bool {
		return value.GreaterThanOrEqual(param)
	}))

	// decimal_scale=N rejects values with more than N decimal places.
	_ = v.RegisterValidation("decimal_scale", func(fl validator.FieldLevel) bool {
		value, ok := fieldDecimal(fl.Field())
		if !ok {
			return false
		}
		places, err := strconv.ParseInt(fl.Param(), 10, 32)
		if err != nil {
			return false
		}
		return value.Equal(value.Truncate(int32(places)))
	})

	return v
}

func compareDecimal(cmp func(value, param decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value, ok := fieldDecimal(fl.Field())
		if !ok {
			return false
		}
		param, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		return cmp(value, param)
	}
}

func fieldDecimal(field reflect.Value) (decimal.Decimal, bool) {
	switch field.Kind() {
	case reflect.String:
		d, err := decimal.NewFromString(field.String())
		return d, err == nil
	case reflect.Struct:
		d, ok := field.Interface().(decimal.Decimal)
		return d, ok
	default:
		return decimal.Zero, false
	}
}

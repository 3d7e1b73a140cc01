package http

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// newValidator validador de DTOs. Los decimal.Decimal se validan por su valor numérico
// (gt=0, gte=0) y los errores usan el nombre JSON del campo.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationMessage(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+" es requerido")
		case "gt":
			parts = append(parts, fe.Field()+" debe ser mayor que "+fe.Param())
		case "gte":
			parts = append(parts, fe.Field()+" debe ser mayor o igual que "+fe.Param())
		case "oneof":
			parts = append(parts, fe.Field()+" debe ser uno de: "+fe.Param())
		default:
			parts = append(parts, fe.Field()+" inválido ("+fe.Tag()+")")
		}
	}
	return strings.Join(parts, "; ")
}

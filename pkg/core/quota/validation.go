package quota

import (
	"reflect"

	"github.com/go-playground/validator/v10"
)

// ValidationTag is the struct tag that checks a field holds a quota code,
// either as a Code value or as its wire name
const ValidationTag = "quotacode"

// RegisterValidation adds the quotacode tag to a validator instance
func RegisterValidation(v *validator.Validate) error {
	return v.RegisterValidation(ValidationTag, validateCodeField)
}

func validateCodeField(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.String:
		_, err := ParseCode(field.String())
		return err == nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Code(field.Int()).Valid()
	default:
		return false
	}
}

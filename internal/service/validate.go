package service

import (
    "errors"
    "fmt"
    "reflect"
    "strings"

    "github.com/go-playground/validator/v10"
)

var validate = newValidate()

func newValidate() *validator.Validate {
    v := validator.New(validator.WithRequiredStructEnabled())
    // report fields by their JSON names
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
        if name == "-" {
            return ""
        }
        return name
    })
    _ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
        return phonePattern.MatchString(fl.Field().String())
    })
    return v
}

// Validator checks the `validate` tags of request structs.  It satisfies
// echo.Validator, so handlers can call c.Validate.
type Validator struct{}

func (Validator) Validate(i any) error { return check(i) }

// check reports the first failing field of in, in declaration order.
func check(in any) error {
    err := validate.Struct(in)
    var verrs validator.ValidationErrors
    if errors.As(err, &verrs) && len(verrs) > 0 {
        return fieldError(verrs[0])
    }
    return err
}

func fieldError(fe validator.FieldError) *FieldError {
    field, _, _ := strings.Cut(fe.Field(), "[")
    var msg string
    switch fe.Tag() {
    case "required":
        msg = "is required"
    case "email":
        msg = "is not a valid address"
    case "phone":
        msg = "must be 7 to 30 digits, spaces or ()+-"
    case "number":
        msg = "must contain digits only"
    case "datetime":
        msg = "must be YYYY-MM-DD"
    case "alpha":
        msg = "must contain letters only"
    case "oneof":
        msg = "must be one of " + strings.Join(strings.Fields(fe.Param()), ", ")
    case "len":
        msg = fmt.Sprintf("must be exactly %s characters", fe.Param())
    case "min", "max":
        msg = boundMessage(fe)
    case "gt":
        msg = "must be greater than " + fe.Param()
    case "gte":
        msg = "must be at least " + fe.Param()
    default:
        msg = "is invalid"
    }
    return invalid(field, msg)
}

func boundMessage(fe validator.FieldError) string {
    word := "at least"
    if fe.Tag() == "max" {
        word = "at most"
    }
    if fe.Kind() == reflect.String {
        return fmt.Sprintf("must be %s %s characters", word, fe.Param())
    }
    return fmt.Sprintf("must be %s %s", word, fe.Param())
}

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/apperr"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator. It reads the same `binding` tags gin
// uses, so request DTOs are checked identically inside services.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.SetTagName("binding")
		validate.RegisterTagNameFunc(jsonTagName)
	})
	return validate
}

// Struct validates s and converts the first failure into an apperr validation error.
func Struct(s interface{}) error {
	if err := Validator().Struct(s); err != nil {
		return ToAppError(err)
	}
	return nil
}

// ToAppError maps validator failures to the ledger's error taxonomy.
func ToAppError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Validation("", "%s", err.Error())
	}

	fe := fieldErrs[0]
	field := fieldPath(fe)
	return apperr.Validation(field, "%s", describe(fe)).Wrap(err)
}

// fieldPath drops the root struct name: "CreateTierRequest.bands[0].price" -> "bands[0].price".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "uuid":
		return "must be a valid UUID"
	case "hexcolor":
		return "must be a hex color"
	default:
		return fmt.Sprintf("failed the %q check", fe.Tag())
	}
}

// RegisterGin makes gin's binding validator report json field names.
func RegisterGin() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonTagName)
	}
}

func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

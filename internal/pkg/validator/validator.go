package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/futig/crm-assistant/internal/config"
	"github.com/futig/crm-assistant/internal/entity"
	playground "github.com/go-playground/validator/v10"
)

// Validator checks incoming requests against field rules and upload limits
type Validator struct {
	cfg      config.FileUploadConfig
	validate *playground.Validate
}

func New(cfg config.FileUploadConfig) *Validator {
	validate := playground.New(playground.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	return &Validator{cfg: cfg, validate: validate}
}

// ValidEmail reports whether s is a syntactically valid e-mail address
func (v *Validator) ValidEmail(s string) bool {
	return v.validate.Var(s, "required,email") == nil
}

// validateStruct runs struct tag rules and maps the first violation to a domain error
func (v *Validator) validateStruct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", entity.ErrInvalidParameter, err)
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s", entity.ErrMissingField, fe.Field())
	case "email":
		return fmt.Errorf("%w: %s must be a valid email address", entity.ErrInvalidParameter, fe.Field())
	case "max", "min":
		return fmt.Errorf("%w: %s length must satisfy %s=%s", entity.ErrInvalidParameter, fe.Field(), fe.Tag(), fe.Param())
	default:
		return fmt.Errorf("%w: %s failed %q", entity.ErrInvalidParameter, fe.Field(), fe.Tag())
	}
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return field.Name
	}
	return name
}

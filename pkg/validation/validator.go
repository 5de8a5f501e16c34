package validation

import (
	"html"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

var phoneRe = regexp.MustCompile(`^\+?\d{10,15}$`)

// Validator satisfies echo.Validator.
type Validator struct {
	validate *validator.Validate
	policy   *bluemonday.Policy
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})

	return &Validator{
		validate: v,
		policy:   bluemonday.StrictPolicy(),
	}
}

func (v *Validator) Validate(i any) error {
	return v.validate.Struct(i)
}

// Sanitize strips markup and surrounding whitespace from user supplied text.
// Entities escaped by the policy are decoded again since output is JSON, not HTML.
func (v *Validator) Sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(v.policy.Sanitize(s)))
}

var defaultValidator = New()

func Sanitize(s string) string {
	return defaultValidator.Sanitize(s)
}

func SanitizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	out := Sanitize(*s)
	return &out
}

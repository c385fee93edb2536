// Package validation holds the field rules shared by the HTTP layer and the Go
// client forms. Rules are declared with the "binding" struct tag so the same
// request types validate identically under gin and under Struct.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const (
	TagName = "binding"

	DateFormat = "2006-01-02"

	MinBirthYear = 1920
	MinAge       = 6
)

var (
	dniTag   = "dni"
	dniText  = "{0} must contain between 7 and 9 digits"
	dniRegex = regexp.MustCompile(`^[0-9]{7,9}$`)

	birthDateTag  = "birthdate"
	birthDateText = "{0} must be a YYYY-MM-DD date between 1920 and the minimum age"

	requiredText = "{0} is required"
)

// FieldError is a validation failure scoped to one field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

var (
	once       sync.Once
	standalone *validator.Validate
	translator ut.Translator

	// now is swapped in tests.
	now = time.Now
)

func init() {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ = uni.GetTranslator("en")
}

// Register installs the custom rules, the English translations and the JSON
// tag naming on v. It is safe to call on gin's binding engine.
func Register(v *validator.Validate) {
	_ = en_translations.RegisterDefaultTranslations(v, translator)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	_ = v.RegisterValidation(dniTag, dniValidation)
	registerTranslation(v, dniTag, dniText)

	_ = v.RegisterValidation(birthDateTag, birthDateValidation)
	registerTranslation(v, birthDateTag, birthDateText)

	registerTranslation(v, "required", requiredText, true)
}

func registerTranslation(v *validator.Validate, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = v.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Validator returns a validator configured like gin's binding engine.
func Validator() *validator.Validate {
	once.Do(func() {
		standalone = validator.New()
		standalone.SetTagName(TagName)
		Register(standalone)
	})
	return standalone
}

// Struct validates s and returns the field-scoped failures, nil when valid.
func Struct(s interface{}) []FieldError {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	fields, ok := Fields(err)
	if !ok {
		return []FieldError{{Field: "", Error: err.Error()}}
	}
	return fields
}

// Fields translates validator.ValidationErrors into FieldErrors.
func Fields(err error) ([]FieldError, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Error: fe.Translate(translator)})
	}
	return out, true
}

func dniValidation(fl validator.FieldLevel) bool {
	return dniRegex.MatchString(fl.Field().String())
}

func birthDateValidation(fl validator.FieldLevel) bool {
	d, err := time.Parse(DateFormat, fl.Field().String())
	if err != nil {
		return false
	}
	return BirthDateInRange(d)
}

// BirthDateInRange applies the minimum year and the age-derived maximum.
func BirthDateInRange(d time.Time) bool {
	if d.Year() < MinBirthYear {
		return false
	}
	latest := now().AddDate(-MinAge, 0, 0)
	return !d.After(latest)
}

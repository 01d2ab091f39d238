// Package validation wires go-playground/validator with English messages and
// the custom rules used by the records forms.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

const (
	phoneTag  = "phone"
	phoneText = "{0} must be entered in the format '+999999999' with up to 15 digits"

	usernameTag  = "username"
	usernameText = "{0} may contain only letters, digits and @/./+/-/_ characters"

	requiredText = "{0} is required"
)

var (
	phoneRegex    = regexp.MustCompile(`^\+?1?\d{9,15}$`)
	usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)
)

var (
	once       sync.Once
	validate   *validator.Validate
	translator ut.Translator
)

// Default returns the shared validator. It is safe for concurrent use.
func Default() *validator.Validate {
	once.Do(setup)
	return validate
}

// Message converts validation failures into a single human readable sentence.
func Message(err error) string {
	once.Do(setup)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Translate(translator))
	}
	return strings.Join(msgs, "; ")
}

func setup() {
	uni := ut.New(en.New())
	translator, _ = uni.GetTranslator("en")

	validate = validator.New()
	_ = enTranslations.RegisterDefaultTranslations(validate, translator)

	// Prefer a human label, then the form field name.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = validate.RegisterValidation(phoneTag, func(fl validator.FieldLevel) bool {
		return phoneRegex.MatchString(fl.Field().String())
	})
	registerTranslation(phoneTag, phoneText, false)
	_ = validate.RegisterValidation(usernameTag, func(fl validator.FieldLevel) bool {
		return usernameRegex.MatchString(fl.Field().String())
	})
	registerTranslation(usernameTag, usernameText, false)
	registerTranslation("required", requiredText, true)
}

func registerTranslation(tag, text string, override bool) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Package validation wraps go-playground/validator with english messages and
// maps failed tags onto the field error kinds in errors.go.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	requiredTag = "required"
	oneOfTag    = "oneof"
)

type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
	kinds      map[string]error
}

func New() *Validator {
	validate := validator.New()

	// Register the english error messages for validation errors.
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v := &Validator{
		validate:   validate,
		translator: translator,
		kinds: map[string]error{
			requiredTag: ErrPresence,
			oneOfTag:    ErrInclusion,
			"min":       ErrRange,
			"max":       ErrRange,
			"gte":       ErrRange,
			"lte":       ErrRange,
			"gt":        ErrRange,
			"lt":        ErrRange,
		},
	}

	v.registerTranslation(requiredTag, ErrPresence.Error(), true)
	v.registerTranslation(oneOfTag, ErrInclusion.Error(), true)

	return v
}

// RegisterValidation adds a custom tag whose failures are reported as kind
// with the given text.
func (v *Validator) RegisterValidation(tag string, fn validator.Func, text string, kind error) error {
	if err := v.validate.RegisterValidation(tag, fn); err != nil {
		return err
	}
	v.kinds[tag] = kind
	v.registerTranslation(tag, text, true)
	return nil
}

// Struct validates s and returns nil or a *Error with one FieldError per
// failed tag.
func (v *Validator) Struct(s any) *Error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Error{Fields: []FieldError{{Message: err.Error(), Err: ErrInvalid}}}
	}

	result := &Error{}
	for _, fe := range verrs {
		kind, ok := v.kinds[fe.Tag()]
		if !ok {
			kind = ErrInvalid
		}
		// default english texts open with the field name; FieldError adds it back
		msg := strings.TrimPrefix(fe.Translate(v.translator), fe.Field()+" ")
		result.Add(fe.Field(), kind, msg)
	}
	return result
}

func (v *Validator) registerTranslation(tag, text string, override bool) {
	_ = v.validate.RegisterTranslation(
		tag, v.translator,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

package validate

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/pot-code/study-tracker/internal/calendar"
)

// custom tags
const (
	TagWhole     = "whole"     // number without fractional part
	TagTimestamp = "timestamp" // string accepted by calendar.ParseTimestamp
)

var customMessages = map[string]map[string]string{
	"en": {
		TagWhole:     "{0} must be a whole number",
		TagTimestamp: "{0} must be a valid timestamp",
	},
	"zh": {
		TagWhole:     "{0}必须是整数",
		TagTimestamp: "{0}必须是有效的时间",
	},
}

// PlaygroundV10 Validator implementation using go-playground
type PlaygroundV10 struct {
	core  *validator.Validate
	trans ut.Translator
}

var _ Validator = &PlaygroundV10{}

// NewValidator create a new Validator whose messages are written in locale ("en" or "zh"),
// unknown locales fall back to en
func NewValidator(locale string) *PlaygroundV10 {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale, zh.New())

	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "-" || name == "" {
			name = fld.Tag.Get("yaml")
			if name == "-" || name == "" {
				return ""
			}
		}
		return trimTagOptions(name)
	})
	validate.RegisterValidation(TagWhole, isWhole)
	validate.RegisterValidation(TagTimestamp, isTimestamp)

	trans, found := uni.GetTranslator(locale)
	if !found {
		locale = "en"
		trans, _ = uni.GetTranslator(locale)
	}
	switch locale {
	case "zh":
		zh_translations.RegisterDefaultTranslations(validate, trans)
	default:
		en_translations.RegisterDefaultTranslations(validate, trans)
	}
	for tag, text := range customMessages[locale] {
		registerMessage(validate, trans, tag, text)
	}

	return &PlaygroundV10{
		core:  validate,
		trans: trans,
	}
}

func registerMessage(validate *validator.Validate, trans ut.Translator, tag, text string) {
	validate.RegisterTranslation(tag, trans, func(ut ut.Translator) error {
		return ut.Add(tag, text, true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		msg, err := ut.T(tag, fe.Field())
		if err != nil {
			return fe.Error()
		}
		return msg
	})
}

func trimTagOptions(name string) string {
	return strings.SplitN(name, ",", 2)[0]
}

func isWhole(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.Float32, reflect.Float64:
		v := field.Float()
		return !math.IsInf(v, 0) && v == math.Trunc(v)
	}
	return true
}

func isTimestamp(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	_, err := calendar.ParseTimestamp(fl.Field().String())
	return err == nil
}

// Struct validate struct
func (v PlaygroundV10) Struct(s interface{}) []*FieldError {
	var result []*FieldError
	err := v.core.Struct(s)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []*FieldError{NewFieldError("", err.Error())}
	}
	for _, item := range errs {
		result = append(result, NewFieldError(item.Field(), item.Translate(v.trans)))
	}
	return result
}

// Empty check if value is empty
func (v PlaygroundV10) Empty(varName string, s interface{}) []*FieldError {
	if err := v.core.Var(s, "required"); err != nil {
		return []*FieldError{NewFieldError(varName, fmt.Sprintf("%s is required", varName))}
	}
	return nil
}

package dto

import (
	"html"
	"reflect"
	"regexp"
	"strings"

	"retail-bank-ledger/internal/core/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	safeStringRe = regexp.MustCompile(`^[a-zA-Z0-9_\-\.]+$`)
	accountNoRe  = regexp.MustCompile(`^[0-9]{6,16}$`)
	pinRe        = regexp.MustCompile(`^[0-9]{4,6}$`)
	citizenIDRe  = regexp.MustCompile(`^[0-9]-?[0-9]{4}-?[0-9]{5}-?[0-9]{2}-?[0-9]$`)
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterValidators(v)
	}
}

// RegisterValidators installs the ledger's custom tags on v.
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("safe_id", matches(safeStringRe))
	_ = v.RegisterValidation("account_no", matches(accountNoRe))
	_ = v.RegisterValidation("pin", matches(pinRe))
	_ = v.RegisterValidation("citizen_id", matches(citizenIDRe))
	_ = v.RegisterValidation("account_kind", validateAccountKind)
	_ = v.RegisterValidation("channel_kind", validateChannelKind)
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func validateAccountKind(fl validator.FieldLevel) bool {
	switch domain.AccountKind(Normalize(fl.Field().String())) {
	case domain.AccountKindSavings, domain.AccountKindFixed, domain.AccountKindCurrent:
		return true
	}
	return false
}

// SYSTEM is reserved for interest and fee entries and cannot be registered.
func validateChannelKind(fl validator.FieldLevel) bool {
	switch domain.ChannelKind(Normalize(fl.Field().String())) {
	case domain.ChannelKindATM, domain.ChannelKindEDC, domain.ChannelKindCounter:
		return true
	}
	return false
}

// Normalize upper-cases an enum value supplied by a client.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// SanitizeStruct trims whitespace and HTML-escapes every exported string
// field (including *string) of a struct pointer.
func SanitizeStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	sanitizeFields(rv.Elem())
}

func sanitizeFields(rv reflect.Value) {
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(sanitize(f.String()))
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			elem := f.Elem()
			if elem.Kind() == reflect.String {
				elem.SetString(sanitize(elem.String()))
			}
		}
	}
}

func sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}

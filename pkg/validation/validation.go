package validation

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator"
	"github.com/pkg/errors"
)

var (
	ErrInvalid = errors.New("validation error")

	once  sync.Once
	vdtor *validator.Validate
)

// Error describes the first field that failed validation.
type Error struct {
	Field string
	Tag   string
	msg   string
}

func (e *Error) Error() string {
	if e.msg != "" {
		return fmt.Sprintf("%s: %s", ErrInvalid, e.msg)
	}

	return fmt.Sprintf("%s: %s failed on %s", ErrInvalid, e.Field, e.Tag)
}

func (e *Error) Unwrap() error {
	return ErrInvalid
}

// Invalidf builds a validation error for checks struct tags cannot express.
func Invalidf(format string, args ...interface{}) error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

func get() *validator.Validate {
	once.Do(func() {
		vdtor = validator.New()

		vdtor.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})

		vdtor.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})

		vdtor.RegisterValidation("jsonobject", func(fl validator.FieldLevel) bool {
			return IsJSONObject(fl.Field().Bytes())
		})
	})

	return vdtor
}

// Struct validates v against its validate tags.
func Struct(v interface{}) error {
	if err := get().Struct(v); err != nil {
		var validateErrors validator.ValidationErrors
		if errors.As(err, &validateErrors) && len(validateErrors) > 0 {
			first := validateErrors[0]
			return &Error{
				Field: first.Field(),
				Tag:   first.Tag(),
			}
		}

		return errors.Wrap(err, "validating")
	}

	return nil
}

// IsJSONObject reports whether b decodes as a JSON object.
func IsJSONObject(b []byte) bool {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return false
	}

	return m != nil
}

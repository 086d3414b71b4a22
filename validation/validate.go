package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/kbukum/voicescreen/errors"
)

// FieldError is one failed rule, keyed by the field's config or wire name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var instance = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	return v
})

// fieldName reports a field the way users spell it: the mapstructure key
// for config, the json key for wire types, snake_case otherwise.
func fieldName(f reflect.StructField) string {
	for _, key := range []string{"mapstructure", "json"} {
		name, _, _ := strings.Cut(f.Tag.Get(key), ",")
		if name == "-" {
			continue
		}
		if name != "" {
			return name
		}
	}
	return snake(f.Name)
}

// Validate checks s against its `validate` tags. Failures come back as one
// INVALID_INPUT AppError listing every field, with the list also under
// Details["fields"].
func Validate(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var failed validator.ValidationErrors
	if !errors.As(err, &failed) {
		return apperrors.Validation("validation failed").WithCause(err)
	}

	fields := make([]FieldError, len(failed))
	parts := make([]string, len(failed))
	for i, fe := range failed {
		fields[i] = FieldError{Field: path(fe), Message: describe(fe)}
		parts[i] = fields[i].Field + ": " + fields[i].Message
	}
	appErr := apperrors.Validation(strings.Join(parts, "; "))
	appErr.Details = map[string]any{"fields": fields}
	return appErr
}

// path strips the root type: Config.transcoder.binary is transcoder.binary.
func path(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}
	return fe.Field()
}

var messages = map[string]string{
	"min":     "must be at least ",
	"gte":     "must be at least ",
	"max":     "must be at most ",
	"lte":     "must be at most ",
	"gt":      "must be greater than ",
	"lt":      "must be less than ",
	"gtfield": "must be greater than ",
	"oneof":   "must be one of: ",
	"len":     "must have length ",
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "hostname_port":
		return "must be a host:port address"
	}
	if prefix, ok := messages[fe.Tag()]; ok {
		return prefix + fe.Param()
	}
	return "is invalid"
}

func snake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

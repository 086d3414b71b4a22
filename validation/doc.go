// Package validation checks configuration and model artifacts against
// go-playground/validator struct tags and reports failures as a single
// INVALID_INPUT AppError.
//
//	type Config struct {
//	    Binary  string        `mapstructure:"binary" validate:"required"`
//	    Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
//	}
//	err := validation.Validate(cfg)
//
// Field names in messages follow the mapstructure key, then the json key,
// so they match what the user wrote.
package validation

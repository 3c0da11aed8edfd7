package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// FieldError describes one invalid configuration field.
type FieldError struct {
	Field   string
	Code    string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

// Validator collects field errors through chained checks.
type Validator struct {
	errors []error
}

func NewValidator() *Validator {
	return &Validator{
		errors: make([]error, 0),
	}
}

func (v *Validator) AddError(err error) {
	v.errors = append(v.errors, err)
}

func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

func (v *Validator) GetErrors() []error {
	return v.errors
}

// Err joins all collected errors, or returns nil.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return errors.Join(v.errors...)
}

// Fields returns the names of all invalid fields in the order they were reported.
func (v *Validator) Fields() []string {
	fields := make([]string, 0, len(v.errors))
	for _, err := range v.errors {
		var fe *FieldError
		if errors.As(err, &fe) {
			fields = append(fields, fe.Field)
		}
	}
	return fields
}

func (v *Validator) addField(field, code, message string) {
	v.AddError(&FieldError{Field: field, Code: code, Message: message})
}

func (v *Validator) ValidateRequired(value, fieldName string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.addField(fieldName, "required_field", fmt.Sprintf("%s is required", fieldName))
	}
	return v
}

func (v *Validator) ValidateRegex(value, fieldName string, pattern *regexp.Regexp, errorMessage string) *Validator {
	if value == "" {
		return v
	}
	if !pattern.MatchString(value) {
		v.addField(fieldName, "invalid_format", errorMessage)
	}
	return v
}

func (v *Validator) ValidatePositive(value int, fieldName string) *Validator {
	if value <= 0 {
		v.addField(fieldName, "not_positive", fmt.Sprintf("%s must be positive, got %d", fieldName, value))
	}
	return v
}

func (v *Validator) ValidateNonNegative(value int, fieldName string) *Validator {
	if value < 0 {
		v.addField(fieldName, "negative_value", fmt.Sprintf("%s cannot be negative, got %d", fieldName, value))
	}
	return v
}

func (v *Validator) ValidatePositiveDuration(value time.Duration, fieldName string) *Validator {
	if value <= 0 {
		v.addField(fieldName, "not_positive", fmt.Sprintf("%s must be a positive duration, got %s", fieldName, value))
	}
	return v
}

// ValidateOneOf skips empty values.
func (v *Validator) ValidateOneOf(value, fieldName string, allowedValues []string) *Validator {
	if value == "" {
		return v
	}
	for _, allowed := range allowedValues {
		if strings.EqualFold(value, allowed) {
			return v
		}
	}
	v.addField(fieldName, "invalid_value",
		fmt.Sprintf("%s must be one of: %s", fieldName, strings.Join(allowedValues, ", ")))
	return v
}

func (v *Validator) ValidateConditional(condition bool, validationFunc func(*Validator) *Validator) *Validator {
	if condition {
		return validationFunc(v)
	}
	return v
}

// ConfigValidator adds checks for bot settings.
type ConfigValidator struct {
	*Validator
}

func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{
		Validator: NewValidator(),
	}
}

var botTokenRegex = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)

// ValidateBotToken expects the 123456789:ABCdef... form.
func (cv *ConfigValidator) ValidateBotToken(token string) *ConfigValidator {
	cv.ValidateRequired(token, "BOT_TOKEN").
		ValidateRegex(token, "BOT_TOKEN", botTokenRegex,
			"BOT_TOKEN must be in format: 123456789:ABCdefGHIjklMNOpqrsTUVwxyz")
	return cv
}

func (cv *ConfigValidator) ValidateLogLevel(level string) *ConfigValidator {
	cv.ValidateOneOf(level, "LOG_LEVEL", []string{"trace", "debug", "info", "warn", "warning", "error", "fatal", "panic"})
	return cv
}

func (cv *ConfigValidator) ValidateLogFormat(format string) *ConfigValidator {
	cv.ValidateOneOf(format, "LOG_FORMAT", []string{"text", "json"})
	return cv
}

// Package validation checks named input fields against a fixed pattern table
// before they reach any use case.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ErlanBelekov/companydesk/internal/domain"
	"github.com/go-playground/validator/v10"
)

// Field names understood by the pattern table.
const (
	FieldEmail   = "email"
	FieldSIRET   = "siret"
	FieldSIREN   = "siren"
	FieldName    = "name"
	FieldAddress = "address"
	FieldTVA     = "tva"
)

var freeText = regexp.MustCompile(`^[a-zA-Z0-9\s]{1,255}$`)

// tag -> pattern, registered as custom validator tags.
var patterns = map[string]*regexp.Regexp{
	"email_address": regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`),
	"siret":         regexp.MustCompile(`^\d{14}$`),
	"siren":         regexp.MustCompile(`^\d{9}$`),
	"free_text":     freeText,
}

// field -> tag
var rules = map[string]string{
	FieldEmail:   "email_address",
	FieldSIRET:   "siret",
	FieldSIREN:   "siren",
	FieldName:    "free_text",
	FieldAddress: "free_text",
	FieldTVA:     "free_text",
}

var messages = map[string]string{
	FieldEmail:   "Invalid email",
	FieldSIRET:   "Invalid SIRET number",
	FieldSIREN:   "Invalid SIREN number",
	FieldName:    "Invalid name",
	FieldAddress: "Invalid address",
	FieldTVA:     "Invalid VAT number",
}

// FieldError names the first field that was missing or did not match.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid field %q", e.Field)
}

func (e *FieldError) Unwrap() error {
	return domain.ErrValidationFailed
}

// Message is the user-facing text for the failed field.
func (e *FieldError) Message() string {
	if m, ok := messages[e.Field]; ok {
		return m
	}
	return "Missing " + e.Field
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	for tag, re := range patterns {
		// Registration only fails on an empty tag or nil func.
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		})
	}
	return &Validator{validate: v}
}

// Validate checks fields of raw in order and stops at the first failure.
// Fields without a pattern only need to be present. Values that pass are
// trimmed of surrounding whitespace.
func (v *Validator) Validate(raw map[string]string, fields ...string) (map[string]string, error) {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		val, ok := raw[f]
		if !ok {
			return nil, &FieldError{Field: f}
		}
		if tag, ok := rules[f]; ok {
			if err := v.validate.Var(val, tag); err != nil {
				return nil, &FieldError{Field: f}
			}
		}
		out[f] = strings.TrimSpace(val)
	}
	return out, nil
}

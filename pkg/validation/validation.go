package validation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	v    *validator.Validate
	once sync.Once
)

// Validator returns the shared validator instance with custom rules registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v = validator.New()
		// Custom: fully-qualified table identifier (project.dataset.table or
		// dataset.table). Identifiers are trusted input per the tool contract;
		// this only rejects obviously malformed values.
		_ = v.RegisterValidation("tableid", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if s == "" {
				return false
			}
			parts := strings.Split(s, ".")
			if len(parts) < 2 || len(parts) > 3 {
				return false
			}
			for _, p := range parts {
				if strings.TrimSpace(p) == "" {
					return false
				}
			}
			return true
		})
	})
	return v
}

// ValidateStruct validates a typed tool input and returns a user-facing
// message for the first violation. Empty string when valid.
func ValidateStruct(s any) string {
	err := Validator().Struct(s)
	if err == nil {
		return ""
	}
	ve, ok := err.(validator.ValidationErrors)
	if !ok || len(ve) == 0 {
		return "invalid inputs"
	}
	fe := ve[0]
	field := snake(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "tableid":
		return field + " must be a qualified table id (dataset.table)"
	case "min", "max", "gte", "lte":
		return fmt.Sprintf("%s must satisfy %s=%s", field, fe.Tag(), fe.Param())
	}
	return "invalid " + field
}

// snake lowercases an exported field name the way it appears in tool schemas
// (SQL -> sql, DateRange -> date_range). Runs of capitals stay one word.
func snake(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if r >= 'A' && r <= 'Z' {
			prevLower := i > 0 && runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if i > 0 && (prevLower || nextLower) {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

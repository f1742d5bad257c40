package validator

import (
	"fmt"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Free-text fields (complaint, readings) accept Cyrillic letters, digits and
// common punctuation only. Same character class the record store enforces.
var freeTextPattern = regexp.MustCompile(`^[А-Яа-яЁё,.!@#$%^&*()0-9 ]+$`)

const maxComplaintLen = 500

// FreeText checks a free-text value against the restricted character set.
func FreeText(s string) bool {
	return freeTextPattern.MatchString(s)
}

// ValidateComplaint applies the field rules of the complaint column.
func ValidateComplaint(s string) error {
	if s == "" {
		return fmt.Errorf("complaint is required")
	}
	if len([]rune(s)) > maxComplaintLen {
		return fmt.Errorf("complaint must not exceed %d characters", maxComplaintLen)
	}
	if !FreeText(s) {
		return fmt.Errorf("complaint contains disallowed characters")
	}
	return nil
}

// ValidateReadings applies the field rules of the readings column.
func ValidateReadings(s string) error {
	if s == "" {
		return fmt.Errorf("readings is required")
	}
	if !FreeText(s) {
		return fmt.Errorf("readings contains disallowed characters")
	}
	return nil
}

// RegisterBindings installs the cyrillictext rule into gin's binding
// validator so request structs can use it as a tag.
func RegisterBindings() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator engine")
	}
	return v.RegisterValidation("cyrillictext", func(fl validator.FieldLevel) bool {
		return FreeText(fl.Field().String())
	})
}

package domain

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Field limits. A value whose rune length reaches the limit is rejected.
const (
	MaxTitleLength         = 200
	MaxNameLength          = 200
	DefaultMaxWordsPerPage = 700
)

// notBlank rejects strings that are empty after trimming whitespace.
var notBlank = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return validation.NewError("validation_blank", "cannot be blank")
	}
	return nil
})

func validateTitle(title string) error {
	return constraintError(validation.Errors{
		"title": validation.Validate(title,
			notBlank,
			validation.RuneLength(0, MaxTitleLength-1),
		),
	}.Filter())
}

func validateName(field, value string) error {
	return constraintError(validation.Errors{
		field: validation.Validate(value,
			notBlank,
			validation.RuneLength(0, MaxNameLength-1),
		),
	}.Filter())
}

// validateOptionalName checks the length of a name field only when it is set.
func validateOptionalName(field, value string) error {
	if isBlank(value) {
		return nil
	}
	return validateName(field, value)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"finledger/internal/core"
)

// RawInput carries form fields exactly as the user typed them.
type RawInput struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
}

// Input is a validated entry ready for normalization.
type Input struct {
	Date        core.Date
	Description string
	Category    core.Category
	Amount      decimal.Decimal
	Type        core.Type
}

// ValidationError reports the first invalid field of an entry.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err came from ParseInput.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

const maxDescriptionLength = 200

// ParseInput applies the input-form rules: the amount is a non-negative
// decimal, type and category belong to their enumerations, and the date is
// YYYY-MM-DD or empty (meaning today).
func ParseInput(raw RawInput) (Input, error) {
	var in Input

	if s := strings.TrimSpace(raw.Date); s != "" {
		d, err := core.ParseDate(s)
		if err != nil {
			return Input{}, &ValidationError{Field: "date", Err: err}
		}
		in.Date = d
	}

	in.Description = strings.TrimSpace(raw.Description)
	if utf8.RuneCountInString(in.Description) > maxDescriptionLength {
		return Input{}, &ValidationError{Field: "description", Err: fmt.Errorf("longer than %d characters", maxDescriptionLength)}
	}

	amount, err := core.ParseAmount(raw.Amount)
	if err != nil {
		return Input{}, &ValidationError{Field: "amount", Err: err}
	}
	in.Amount = amount

	in.Type = core.ParseType(raw.Type)
	if err := in.Type.Validate(); err != nil {
		return Input{}, &ValidationError{Field: "type", Err: err}
	}

	in.Category = core.Category(strings.TrimSpace(raw.Category))
	if err := in.Category.Validate(); err != nil {
		return Input{}, &ValidationError{Field: "category", Err: err}
	}

	return in, nil
}

package analysis

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	errMissingText   = errors.New("missing 'text' field")
	errTextTooLong   = errors.New("text too long")
	errMinConfidence = errors.New("min_confidence must be between 0 and 1")
	errMissingQuery  = errors.New("missing 'query' field")
	errEmptyQuery    = errors.New("query cannot be empty")
)

type ValidationError struct {
	reason error
}

func (e ValidationError) Error() string {
	return e.reason.Error()
}

func (e ValidationError) Unwrap() error {
	return e.reason
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

type Validator struct {
	maxTextLength int
}

// NewValidator limits text to maxTextLength characters; zero means no limit.
func NewValidator(maxTextLength int) *Validator {
	return &Validator{maxTextLength: maxTextLength}
}

func (v *Validator) Validate(req AnalyzeRequest) error {
	if req.Text == nil {
		return ValidationError{reason: errMissingText}
	}
	if v != nil && v.maxTextLength > 0 {
		if n := utf8.RuneCountInString(*req.Text); n > v.maxTextLength {
			return ValidationError{reason: fmt.Errorf("%d characters exceeds limit of %d: %w", n, v.maxTextLength, errTextTooLong)}
		}
	}
	if mc := req.MinConfidence; mc != nil && (*mc < 0 || *mc > 1) {
		return ValidationError{reason: errMinConfidence}
	}
	return nil
}

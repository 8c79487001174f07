package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// spaceRegexp is compiled once at package init and reused across all Sanitize calls.
var spaceRegexp = regexp.MustCompile(`[ \t]+`)

// DefaultMaxInputLength bounds a single prompt.
const DefaultMaxInputLength = 4000

type InputValidator struct {
	maxLength int
}

func NewInputValidator(maxLength int) *InputValidator {
	if maxLength <= 0 {
		maxLength = DefaultMaxInputLength
	}
	return &InputValidator{
		maxLength: maxLength,
	}
}

func (v *InputValidator) Validate(query string) error {
	if !utf8.ValidString(query) {
		return errors.New("invalid UTF-8 encoding")
	}

	if strings.TrimSpace(query) == "" {
		return errors.New("query is empty")
	}

	if n := utf8.RuneCountInString(query); n > v.maxLength {
		return fmt.Errorf("query too long: %d characters, maximum %d", n, v.maxLength)
	}

	return nil
}

// Sanitize trims the query, composes it to NFC and collapses runs of spaces
// and tabs. Line breaks are kept since they often carry structure in page
// descriptions.
func (v *InputValidator) Sanitize(query string) string {
	query = norm.NFC.String(strings.TrimSpace(query))
	query = spaceRegexp.ReplaceAllString(query, " ")
	return query
}

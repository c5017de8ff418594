package parser

import (
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/profiq/open-poll/server/utils"
)

// ErrorKind is the reason a command could not be parsed.
type ErrorKind int

const (
	ErrNoQuestion ErrorKind = iota + 1
	ErrMissingClosingQuote
	ErrEmptyQuestion
	ErrTooFewOptions
	ErrTooManyOptions
	ErrInvalidLimit
)

func (k ErrorKind) String() string {
	switch k {
	case ErrNoQuestion:
		return "no question"
	case ErrMissingClosingQuote:
		return "missing closing quote"
	case ErrEmptyQuestion:
		return "empty question"
	case ErrTooFewOptions:
		return "too few options"
	case ErrTooManyOptions:
		return "too many options"
	case ErrInvalidLimit:
		return "invalid limit"
	}
	return "unknown"
}

// ParseError is a typed parse failure carrying the message shown to the user.
type ParseError struct {
	Kind ErrorKind
	*utils.ErrorMessage
}

func newParseError(kind ErrorKind, m *i18n.Message, data map[string]interface{}) *ParseError {
	return &ParseError{
		Kind: kind,
		ErrorMessage: &utils.ErrorMessage{
			Message: m,
			Data:    data,
		},
	}
}

func errNoQuestion() *ParseError {
	return newParseError(ErrNoQuestion, &i18n.Message{
		ID:    "parser.noQuestion",
		Other: "No question found. Please enclose your question in quotes (e.g., \"Your question?\").",
	}, nil)
}

func errMissingClosingQuote(open rune) *ParseError {
	return newParseError(ErrMissingClosingQuote, &i18n.Message{
		ID:    "parser.missingClosingQuote",
		Other: "Missing closing quote for your question. Found opening quote {{.Quote}} but no matching closing quote.",
	}, map[string]interface{}{
		"Quote": string(open),
	})
}

func errEmptyQuestion() *ParseError {
	return newParseError(ErrEmptyQuestion, &i18n.Message{
		ID:    "parser.emptyQuestion",
		Other: "Question cannot be empty. Please provide a question in quotes.",
	}, nil)
}

func errTooFewOptions(n int) *ParseError {
	return newParseError(ErrTooFewOptions, &i18n.Message{
		ID:    "parser.tooFewOptions",
		Other: "At least {{.Minimum}} options are required. You provided {{.Count}} option(s).",
	}, map[string]interface{}{
		"Minimum": MinOptions,
		"Count":   n,
	})
}

func errTooManyOptions(n int) *ParseError {
	return newParseError(ErrTooManyOptions, &i18n.Message{
		ID:    "parser.tooManyOptions",
		Other: "Maximum {{.Maximum}} options allowed. You provided {{.Count}} options.",
	}, map[string]interface{}{
		"Maximum": MaxOptions,
		"Count":   n,
	})
}

func errInvalidLimit(value string) *ParseError {
	return newParseError(ErrInvalidLimit, &i18n.Message{
		ID:    "parser.invalidLimit",
		Other: "Invalid limit {{.Limit}}. The limit must be a number between {{.Minimum}} and {{.Maximum}}.",
	}, map[string]interface{}{
		"Limit":   value,
		"Minimum": MinLimit,
		"Maximum": MaxLimit,
	})
}

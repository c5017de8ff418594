// Package parser turns the text of a poll command into a structured request.
package parser

import (
	"strings"

	"github.com/profiq/open-poll/server/poll"
)

const (
	MinOptions = poll.MinimumOptions
	MaxOptions = poll.MaximumOptions

	flagSeparator   = "--"
	optionSeparator = ","
)

// Kind is the variant of a parsed command.
type Kind int

const (
	KindPoll Kind = iota
	KindHelp
	KindInfo
	KindCreate
)

var specialCommands = map[string]Kind{
	"help":   KindHelp,
	"info":   KindInfo,
	"create": KindCreate,
}

// Command is a parsed poll command. Only KindPoll carries a question and options.
type Command struct {
	Kind     Kind
	Question string
	Options  []string
	Flags    Flags
	// ExtraFlags are the free-form flags following "--" after the options.
	ExtraFlags []string
}

// Parse parses the text of a poll command.
func Parse(text string) (*Command, *ParseError) {
	if kind, ok := specialCommands[strings.ToLower(strings.TrimSpace(text))]; ok {
		return &Command{Kind: kind}, nil
	}

	quoted, ok := ExtractQuotedText(text)
	if !ok {
		open, found := FindFirstQuote(text)
		if !found {
			return nil, errNoQuestion()
		}
		return nil, errMissingClosingQuote(open.Char)
	}

	flags, perr := ParseFlags(quoted.BeforeQuote)
	if perr != nil {
		return nil, perr
	}

	options, extraFlags := ParseOptions(quoted.AfterQuote)
	if perr := ValidateParsedCommand(quoted.Question, options); perr != nil {
		return nil, perr
	}

	return &Command{
		Kind:       KindPoll,
		Question:   strings.TrimSpace(quoted.Question),
		Options:    options,
		Flags:      flags,
		ExtraFlags: extraFlags,
	}, nil
}

// ParseOptions splits the text after the question into options and trailing "--" flags.
func ParseOptions(s string) (options, flags []string) {
	parts := strings.Split(s, flagSeparator)

	options = []string{}
	for _, o := range strings.Split(parts[0], optionSeparator) {
		if o = strings.TrimSpace(o); o != "" {
			options = append(options, o)
		}
	}

	flags = []string{}
	for _, f := range parts[1:] {
		flags = append(flags, strings.TrimSpace(f))
	}
	return options, flags
}

// ValidateParsedCommand checks the question and the number of options.
func ValidateParsedCommand(question string, options []string) *ParseError {
	if strings.TrimSpace(question) == "" {
		return errEmptyQuestion()
	}
	if len(options) < MinOptions {
		return errTooFewOptions(len(options))
	}
	if len(options) > MaxOptions {
		return errTooManyOptions(len(options))
	}
	return nil
}

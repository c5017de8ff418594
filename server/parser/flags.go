package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/profiq/open-poll/server/poll"
)

const (
	MinLimit = poll.MinimumLimit
	MaxLimit = poll.MaximumOptions

	flagMultiple       = "multiple"
	flagCustom         = "custom"
	flagCustomShort    = "-c"
	flagAnonymous      = "anonymous"
	flagAnonymousShort = "-a"
	flagLimit          = "limit"
)

// numberPattern matches a decimal number. The first group is its integer part.
var numberPattern = regexp.MustCompile(`^([+-]?\d+)(\.\d+)?$`)

// Flags are the poll settings written in front of the question.
type Flags struct {
	Multiple  bool
	Custom    bool
	Anonymous bool
	// MaxVotes is 1 for single choice polls and the explicit limit or 10 for multiple choice polls.
	MaxVotes int
	// Limit is the explicit limit or 0 if none was given.
	Limit int
}

// Settings converts the flags into poll settings.
func (f Flags) Settings() poll.Settings {
	return poll.NewSettings(f.Multiple, f.Anonymous, f.Custom, f.Limit)
}

// ParseFlags scans the text in front of the question for flags. Unknown words are ignored.
// A limit followed by a number outside of [2,10] is an error, a limit followed by anything else is ignored.
func ParseFlags(s string) (Flags, *ParseError) {
	var f Flags
	tokens := strings.Fields(strings.ToLower(s))
	for i := 0; i < len(tokens); i++ {
		switch tokens[i] {
		case flagMultiple:
			f.Multiple = true
		case flagCustom, flagCustomShort:
			f.Custom = true
		case flagAnonymous, flagAnonymousShort:
			f.Anonymous = true
		case flagLimit:
			if i+1 >= len(tokens) {
				continue
			}
			m := numberPattern.FindStringSubmatch(tokens[i+1])
			if m == nil {
				continue
			}
			n, err := strconv.Atoi(m[1])
			if err != nil || n < MinLimit || n > MaxLimit {
				return Flags{}, errInvalidLimit(tokens[i+1])
			}
			f.Limit = n
			i++
		}
	}

	if f.Limit > 0 {
		f.Multiple = true
	}
	switch {
	case f.Limit > 0:
		f.MaxVotes = f.Limit
	case f.Multiple:
		f.MaxVotes = poll.DefaultMultipleMaxVotes
	default:
		f.MaxVotes = 1
	}
	return f, nil
}

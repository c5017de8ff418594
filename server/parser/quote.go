package parser

import (
	"strings"
	"unicode/utf8"
)

const (
	straightDouble   = '"'
	smartDoubleOpen  = '“'
	smartDoubleClose = '”'
	straightSingle   = '\''
	smartSingleOpen  = '‘'
	smartSingleClose = '’'
)

var openingQuotes = []rune{straightDouble, smartDoubleOpen, straightSingle, smartSingleOpen}

// closingQuotes maps an opening quote to the characters accepted as its closing quote.
var closingQuotes = map[rune][]rune{
	straightDouble:  {straightDouble, smartDoubleClose},
	smartDoubleOpen: {smartDoubleClose, straightDouble},
	straightSingle:  {straightSingle, smartSingleClose},
	smartSingleOpen: {smartSingleClose, straightSingle},
}

// Quote is a quote character found at a byte index of a text.
type Quote struct {
	Index int
	Char  rune
}

// QuotedText is a text split at its first quoted section.
type QuotedText struct {
	// Question is the text between the quotes. It is not trimmed and may be empty.
	Question      string
	BeforeQuote   string
	AfterQuote    string
	QuotedSection string
}

// FindFirstQuote returns the earliest opening quote of any quote family.
func FindFirstQuote(text string) (Quote, bool) {
	return findFirst(text, 0, openingQuotes)
}

// FindMatchingClosingQuote returns the nearest quote after openIndex that closes the given opening quote.
func FindMatchingClosingQuote(text string, openIndex int, open rune) (Quote, bool) {
	candidates, ok := closingQuotes[open]
	if !ok {
		candidates = []rune{open}
	}
	return findFirst(text, openIndex+utf8.RuneLen(open), candidates)
}

func findFirst(text string, from int, chars []rune) (Quote, bool) {
	if from > len(text) {
		return Quote{}, false
	}
	found := Quote{Index: -1}
	for _, c := range chars {
		i := strings.IndexRune(text[from:], c)
		if i == -1 {
			continue
		}
		if found.Index == -1 || from+i < found.Index {
			found = Quote{Index: from + i, Char: c}
		}
	}
	return found, found.Index != -1
}

// ExtractQuotedText splits text at its first quoted section.
// It returns false if there is no opening quote or the opening quote is never closed.
func ExtractQuotedText(text string) (QuotedText, bool) {
	open, ok := FindFirstQuote(text)
	if !ok {
		return QuotedText{}, false
	}
	closing, ok := FindMatchingClosingQuote(text, open.Index, open.Char)
	if !ok {
		return QuotedText{}, false
	}

	questionStart := open.Index + utf8.RuneLen(open.Char)
	afterStart := closing.Index + utf8.RuneLen(closing.Char)
	return QuotedText{
		Question:      text[questionStart:closing.Index],
		BeforeQuote:   strings.TrimSpace(text[:open.Index]),
		AfterQuote:    strings.TrimSpace(text[afterStart:]),
		QuotedSection: text[open.Index:afterStart],
	}, true
}

package utils

import (
	"strings"
)

// CommandArgument strips the slash command trigger from a given input and returns the remaining text.
func CommandArgument(input, trigger string) string {
	input = strings.TrimSpace(input)
	fields := strings.SplitN(input, " ", 2)
	if len(fields) == 0 || !strings.EqualFold(fields[0], "/"+trigger) {
		return input
	}
	if len(fields) == 1 {
		return ""
	}
	return strings.TrimSpace(fields[1])
}

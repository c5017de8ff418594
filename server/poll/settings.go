package poll

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/profiq/open-poll/server/utils"
)

const (
	// DefaultMultipleMaxVotes is the vote limit of a multiple choice poll without an explicit limit.
	DefaultMultipleMaxVotes = 10
	// MinimumLimit is the smallest explicit vote limit.
	MinimumLimit = 2

	SettingKeyMultiple  = "multiple"
	SettingKeyLimit     = "limit"
	SettingKeyAnonymous = "anonymous"
	SettingKeyCustom    = "custom"
)

// Settings stores possible settings for a poll
type Settings struct {
	Multiple  bool `json:"multiple"`
	MaxVotes  int  `json:"max_votes"`
	Anonymous bool `json:"anonymous"`
	Custom    bool `json:"custom"`
}

// NewSettings creates settings from parsed flags. A limit of 0 means no explicit limit.
func NewSettings(multiple, anonymous, custom bool, limit int) Settings {
	s := Settings{
		Multiple:  multiple || limit > 0,
		Anonymous: anonymous,
		Custom:    custom,
		MaxVotes:  1,
	}
	if s.Multiple {
		s.MaxVotes = DefaultMultipleMaxVotes
		if limit > 0 {
			s.MaxVotes = limit
		}
	}
	return s
}

// NewSettingsFromSubmission creates a new settings with the given dialog submission.
func NewSettingsFromSubmission(submission map[string]interface{}) (Settings, *utils.ErrorMessage) {
	var multiple, anonymous, custom bool
	limit := 0
	for k, v := range submission {
		switch k {
		case "setting-" + SettingKeyLimit:
			i, errMsg := parseLimitSubmission(v)
			if errMsg != nil {
				return Settings{}, errMsg
			}
			if i != 0 && (i < MinimumLimit || i > MaximumOptions) {
				return Settings{}, invalidLimitMessage(i)
			}
			limit = i
		case "setting-" + SettingKeyMultiple:
			multiple = isChecked(v)
		case "setting-" + SettingKeyAnonymous:
			anonymous = isChecked(v)
		case "setting-" + SettingKeyCustom:
			custom = isChecked(v)
		}
	}

	s := NewSettings(multiple, anonymous, custom, limit)
	if errMsg := s.validate(); errMsg != nil {
		return Settings{}, errMsg
	}
	return s, nil
}

func isChecked(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	}
	return false
}

// parseLimitSubmission parses the limit field of the create dialog. Empty means no limit.
func parseLimitSubmission(v interface{}) (int, *utils.ErrorMessage) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return int(n), nil
	case string:
		n = strings.TrimSpace(n)
		if n == "" {
			return 0, nil
		}
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, invalidLimitMessage(n)
		}
		return i, nil
	}
	return 0, invalidLimitMessage(fmt.Sprint(v))
}

func invalidLimitMessage(limit interface{}) *utils.ErrorMessage {
	return &utils.ErrorMessage{
		Message: &i18n.Message{
			ID:    "poll.settings.invalidLimit",
			Other: "Invalid limit value: {{.Limit}}. The limit must be a number between {{.Minimum}} and {{.Maximum}}.",
		},
		Data: map[string]interface{}{
			"Limit":   limit,
			"Minimum": MinimumLimit,
			"Maximum": MaximumOptions,
		},
	}
}

// validate checks that the vote limit matches the poll type.
func (s Settings) validate() *utils.ErrorMessage {
	if !s.Multiple {
		if s.MaxVotes != 1 {
			return invalidLimitMessage(s.MaxVotes)
		}
		return nil
	}
	if s.MaxVotes < 1 || s.MaxVotes > MaximumOptions {
		return invalidLimitMessage(s.MaxVotes)
	}
	return nil
}

func (s Settings) String() string {
	var settingsText []string
	if s.Multiple {
		settingsText = append(settingsText, SettingKeyMultiple)
		if s.MaxVotes != DefaultMultipleMaxVotes {
			settingsText = append(settingsText, fmt.Sprintf("%s %d", SettingKeyLimit, s.MaxVotes))
		}
	}
	if s.Anonymous {
		settingsText = append(settingsText, SettingKeyAnonymous)
	}
	if s.Custom {
		settingsText = append(settingsText, SettingKeyCustom)
	}

	return strings.Join(settingsText, ", ")
}

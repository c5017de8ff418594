package poll_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/profiq/open-poll/server/poll"
	"github.com/profiq/open-poll/server/utils/testutils"
)

func TestToMap(t *testing.T) {
	m := poll.Metadata{
		PollID:        "pollID",
		UserID:        "userID",
		CanManagePoll: true,
		SettingCustom: true,
	}

	expectedMap := map[string]interface{}{
		"poll_id":         "pollID",
		"user_id":         "userID",
		"voted_options":   []string(nil),
		"can_manage_poll": true,
		"setting_custom":  true,
		"closed":          false,
	}
	assert.Equal(t, expectedMap, m.ToMap())
}

func TestGetMetadata(t *testing.T) {
	for name, test := range map[string]struct {
		Poll     *poll.Poll
		UserID   string
		Expected *poll.Metadata
	}{
		"creator with vote": {
			Poll:   testutils.GetPollWithVotes(),
			UserID: "userID1",
			Expected: &poll.Metadata{
				PollID:        testutils.GetPollID(),
				UserID:        "userID1",
				VotedOptions:  []string{"1"},
				CanManagePoll: true,
			},
		},
		"other user without vote, custom": {
			Poll:   testutils.GetPollWithSettings(poll.Settings{MaxVotes: 1, Custom: true}),
			UserID: "userID9",
			Expected: &poll.Metadata{
				PollID:        testutils.GetPollID(),
				UserID:        "userID9",
				VotedOptions:  []string{},
				SettingCustom: true,
			},
		},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.Expected, test.Poll.GetMetadata(test.UserID))
		})
	}
}

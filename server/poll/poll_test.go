package poll_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profiq/open-poll/server/poll"
	"github.com/profiq/open-poll/server/utils/testutils"
)

func TestNewPoll(t *testing.T) {
	t.Run("all fine", func(t *testing.T) {
		assert := assert.New(t)

		settings := poll.NewSettings(true, true, false, 2)
		p, errMsg := poll.NewPoll("userID1", "channelID", "  Question  ", []string{"A", " B ", "C"}, settings)

		require.Nil(t, errMsg)
		require.NotNil(t, p)
		assert.Empty(p.ID)
		assert.NotZero(p.CreatedAt)
		assert.Equal("userID1", p.Creator)
		assert.Equal("channelID", p.ChannelID)
		assert.Equal("Question", p.Question)
		assert.Equal([]*poll.Option{{ID: "1", Label: "A"}, {ID: "2", Label: "B"}, {ID: "3", Label: "C"}}, p.Options)
		assert.Equal([]poll.Vote{}, p.Votes)
		assert.Equal(poll.Settings{Multiple: true, MaxVotes: 2, Anonymous: true}, p.Settings)
		assert.False(p.Closed)
	})

	for name, test := range map[string]struct {
		Question string
		Options  []string
		Settings poll.Settings
	}{
		"empty question":   {Question: "  ", Options: []string{"A", "B"}, Settings: poll.NewSettings(false, false, false, 0)},
		"one option":       {Question: "Q", Options: []string{"A"}, Settings: poll.NewSettings(false, false, false, 0)},
		"duplicate option": {Question: "Q", Options: []string{"A", "B", "A"}, Settings: poll.NewSettings(false, false, false, 0)},
		"empty option":     {Question: "Q", Options: []string{"A", ""}, Settings: poll.NewSettings(false, false, false, 0)},
		"eleven options":   {Question: "Q", Options: []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"}, Settings: poll.NewSettings(false, false, false, 0)},
		"limit too high":   {Question: "Q", Options: []string{"A", "B"}, Settings: poll.Settings{Multiple: true, MaxVotes: 11}},
		"single with two":  {Question: "Q", Options: []string{"A", "B"}, Settings: poll.Settings{MaxVotes: 2}},
	} {
		t.Run(name, func(t *testing.T) {
			p, errMsg := poll.NewPoll("userID1", "channelID", test.Question, test.Options, test.Settings)
			assert.Nil(t, p)
			assert.NotNil(t, errMsg)
		})
	}
}

func TestNewSettings(t *testing.T) {
	for name, test := range map[string]struct {
		Multiple bool
		Limit    int
		Expected poll.Settings
	}{
		"single":             {Expected: poll.Settings{MaxVotes: 1}},
		"multiple":           {Multiple: true, Expected: poll.Settings{Multiple: true, MaxVotes: 10}},
		"limit implies multi": {Limit: 3, Expected: poll.Settings{Multiple: true, MaxVotes: 3}},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.Expected, poll.NewSettings(test.Multiple, false, false, test.Limit))
		})
	}
}

func TestNewSettingsFromSubmission(t *testing.T) {
	for name, test := range map[string]struct {
		Submission    map[string]interface{}
		Expected      poll.Settings
		ShouldSucceed bool
	}{
		"empty": {
			Submission:    map[string]interface{}{},
			Expected:      poll.Settings{MaxVotes: 1},
			ShouldSucceed: true,
		},
		"all set": {
			Submission: map[string]interface{}{
				"setting-multiple":  true,
				"setting-anonymous": "true",
				"setting-custom":    true,
				"setting-limit":     "4",
			},
			Expected:      poll.Settings{Multiple: true, MaxVotes: 4, Anonymous: true, Custom: true},
			ShouldSucceed: true,
		},
		"numeric limit": {
			Submission:    map[string]interface{}{"setting-limit": float64(2)},
			Expected:      poll.Settings{Multiple: true, MaxVotes: 2},
			ShouldSucceed: true,
		},
		"limit one": {
			Submission: map[string]interface{}{"setting-limit": "1"},
		},
		"limit eleven": {
			Submission: map[string]interface{}{"setting-limit": "11"},
		},
		"limit not a number": {
			Submission: map[string]interface{}{"setting-limit": "two"},
		},
	} {
		t.Run(name, func(t *testing.T) {
			s, errMsg := poll.NewSettingsFromSubmission(test.Submission)
			if test.ShouldSucceed {
				assert.Nil(t, errMsg)
				assert.Equal(t, test.Expected, s)
			} else {
				assert.NotNil(t, errMsg)
			}
		})
	}
}

func TestAddOption(t *testing.T) {
	t.Run("fine", func(t *testing.T) {
		p := testutils.GetPoll()
		require.Nil(t, p.AddOption("id4", " Answer 4 "))
		assert.Equal(t, &poll.Option{ID: "id4", Label: "Answer 4"}, p.Options[3])
	})
	t.Run("duplicate label", func(t *testing.T) {
		p := testutils.GetPoll()
		assert.NotNil(t, p.AddOption("id4", "Answer 1"))
		assert.Len(t, p.Options, 3)
	})
	t.Run("label of a deleted option can be reused", func(t *testing.T) {
		p := testutils.GetPoll()
		p.Options[0].Deleted = true
		assert.Nil(t, p.AddOption("id4", "Answer 1"))
	})
	t.Run("duplicate id", func(t *testing.T) {
		p := testutils.GetPoll()
		assert.NotNil(t, p.AddOption("2", "Answer 4"))
	})
	t.Run("eleventh option", func(t *testing.T) {
		p := testutils.GetPoll()
		for _, id := range []string{"4", "5", "6", "7", "8", "9", "10"} {
			require.Nil(t, p.AddOption(id, "Answer "+id))
		}
		assert.NotNil(t, p.AddOption("11", "Answer 11"))
		assert.Len(t, p.ActiveOptions(), poll.MaximumOptions)
	})
}

func TestDeleteOption(t *testing.T) {
	t.Run("fine, votes are dropped", func(t *testing.T) {
		p := testutils.GetPollWithVotes()
		require.Nil(t, p.DeleteOption("1"))
		assert.True(t, p.Options[0].Deleted)
		assert.Len(t, p.ActiveOptions(), 2)
		assert.Equal(t, []poll.Vote{{UserID: "userID4", OptionID: "2"}}, p.Votes)
	})
	t.Run("unknown option", func(t *testing.T) {
		p := testutils.GetPoll()
		assert.NotNil(t, p.DeleteOption("9"))
	})
	t.Run("already deleted", func(t *testing.T) {
		p := testutils.GetPoll()
		require.Nil(t, p.DeleteOption("3"))
		assert.NotNil(t, p.DeleteOption("3"))
	})
	t.Run("minimum options", func(t *testing.T) {
		p := testutils.GetPollTwoOptions()
		assert.NotNil(t, p.DeleteOption("1"))
		assert.False(t, p.Options[0].Deleted)
	})
}

func TestPollHelpers(t *testing.T) {
	p := testutils.GetPollWithVotes()

	assert.Equal(t, []string{"userID1", "userID2", "userID3"}, p.GetVoters("1"))
	assert.Equal(t, []string{}, p.GetVoters("3"))
	assert.Equal(t, []string{"2"}, p.GetVotedOptionIDs("userID4"))
	assert.True(t, p.HasVoted("userID2"))
	assert.False(t, p.HasVoted("userID9"))
	assert.Equal(t, 4, p.TotalVotes())
	assert.True(t, p.IsCreator("userID1"))
	assert.False(t, p.IsCreator("userID2"))
	assert.False(t, p.IsCreator(""))
}

func TestEncodeDecode(t *testing.T) {
	p1 := testutils.GetPollWithVotes()
	p2 := poll.DecodePollFromByte(p1.EncodeToByte())
	assert.Equal(t, p1, p2)

	assert.Nil(t, poll.DecodePollFromByte([]byte("{")))
}

func TestPollCopy(t *testing.T) {
	t.Run("no change", func(t *testing.T) {
		p := testutils.GetPollWithVotes()
		p2 := p.Copy()

		assert.Equal(t, p, p2)
	})
	t.Run("change options and votes", func(t *testing.T) {
		p := testutils.GetPollWithVotes()
		p2 := p.Copy()

		p.Options[0].Label = "Changed"
		p.Votes[0].OptionID = "3"
		assert.Equal(t, testutils.GetPollWithVotes(), p2)
	})
	t.Run("nil votes stay nil", func(t *testing.T) {
		p := testutils.GetPoll()
		p.Votes = nil
		assert.Nil(t, p.Copy().Votes)
	})
}

func TestPatchApply(t *testing.T) {
	closed := true
	postID := "newPostID"
	p := testutils.GetPollWithVotes()

	poll.Patch{}.Apply(p)
	assert.Equal(t, testutils.GetPollWithVotes(), p)
	assert.True(t, poll.Patch{}.IsEmpty())

	poll.Patch{Votes: []poll.Vote{}, Closed: &closed, PostID: &postID}.Apply(p)
	assert.Equal(t, []poll.Vote{}, p.Votes)
	assert.True(t, p.Closed)
	assert.Equal(t, postID, p.PostID)
	assert.Len(t, p.Options, 3)
}

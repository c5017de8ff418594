package poll_test

import (
	"errors"
	"testing"

	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profiq/open-poll/server/poll"
	"github.com/profiq/open-poll/server/utils/testutils"
)

const pluginID = "com.profiq.open-poll"

func convert(userID string) (string, error) {
	switch userID {
	case "userID1":
		return "@user1", nil
	case "userID2":
		return "@user2", nil
	case "userID3":
		return "@user3", nil
	case "userID4":
		return "@user4", nil
	}
	return "", errors.New("unknown user")
}

func TestPollToPostActions(t *testing.T) {
	bundle := testutils.GetBundle()
	l := bundle.GetServerLocalizer()
	base := "/plugins/" + pluginID + "/api/v1/polls/" + testutils.GetPollID()

	t.Run("votes and voters", func(t *testing.T) {
		attachments, err := testutils.GetPollWithVotes().ToPostActions(bundle, l, pluginID, "John Doe", convert)
		require.NoError(t, err)
		require.Len(t, attachments, 1)

		a := attachments[0]
		assert.Equal(t, "John Doe", a.AuthorName)
		assert.Equal(t, "Question", a.Title)
		assert.Equal(t, "**1. Answer 1** (3): @user1, @user2, @user3\n**2. Answer 2** (1): @user4\n**3. Answer 3** (0)\n---\n**Total votes**: 4", a.Text)

		require.Len(t, a.Actions, 8)
		assert.Equal(t, "1. Answer 1 (3)", a.Actions[0].Name)
		assert.Equal(t, model.PostActionTypeButton, a.Actions[0].Type)
		assert.Equal(t, base+"/vote/1", a.Actions[0].Integration.URL)
		assert.Equal(t, "3. Answer 3 (0)", a.Actions[2].Name)
		assert.Equal(t, base+"/vote/3", a.Actions[2].Integration.URL)

		assert.Equal(t, "Your votes", a.Actions[3].Name)
		assert.Equal(t, base+"/votes", a.Actions[3].Integration.URL)
		assert.Equal(t, "Add Option", a.Actions[4].Name)
		assert.Equal(t, base+"/option/add/request", a.Actions[4].Integration.URL)
		assert.Equal(t, model.PostActionTypeSelect, a.Actions[5].Type)
		assert.Len(t, a.Actions[5].Options, 3)
		assert.Equal(t, "Close Poll", a.Actions[6].Name)
		assert.Equal(t, base+"/close", a.Actions[6].Integration.URL)
		assert.Equal(t, "Delete Poll", a.Actions[7].Name)
		assert.Equal(t, base+"/delete", a.Actions[7].Integration.URL)
	})

	t.Run("anonymous with settings line", func(t *testing.T) {
		p := testutils.GetPollWithVotesAndSettings(poll.Settings{Multiple: true, MaxVotes: 2, Anonymous: true})
		attachments, err := p.ToPostActions(bundle, l, pluginID, "John Doe", convert)
		require.NoError(t, err)
		assert.Equal(t, "**1. Answer 1** (3)\n**2. Answer 2** (1)\n**3. Answer 3** (0)\n---\n**Poll settings**: multiple, limit 2, anonymous\n**Total votes**: 4", attachments[0].Text)
	})

	t.Run("deleted options are hidden and renumbered", func(t *testing.T) {
		p := testutils.GetPollWithVotes()
		p.Options[0].Deleted = true
		attachments, err := p.ToPostActions(bundle, l, pluginID, "John Doe", convert)
		require.NoError(t, err)
		assert.Equal(t, "1. Answer 2 (1)", attachments[0].Actions[0].Name)
		assert.Equal(t, base+"/vote/2", attachments[0].Actions[0].Integration.URL)
		assert.Contains(t, attachments[0].Text, "**Total votes**: 1")
	})

	t.Run("closed poll has no vote buttons", func(t *testing.T) {
		p := testutils.GetPollWithVotes()
		p.Closed = true
		attachments, err := p.ToPostActions(bundle, l, pluginID, "John Doe", convert)
		require.NoError(t, err)
		require.Len(t, attachments[0].Actions, 1)
		assert.Equal(t, "Delete Poll", attachments[0].Actions[0].Name)
		assert.Contains(t, attachments[0].Text, "**This poll is closed**")
	})

	t.Run("unknown voter", func(t *testing.T) {
		p := testutils.GetPoll()
		p.Votes = []poll.Vote{{UserID: "ghost", OptionID: "1"}}
		attachments, err := p.ToPostActions(bundle, l, pluginID, "John Doe", convert)
		assert.Error(t, err)
		assert.Nil(t, attachments)
	})
}

func TestPollToResultsPost(t *testing.T) {
	bundle := testutils.GetBundle()
	l := bundle.GetServerLocalizer()

	t.Run("public", func(t *testing.T) {
		expectedPost := &model.Post{}
		model.ParseSlackAttachment(expectedPost, []*model.SlackAttachment{{
			AuthorName: "John Doe",
			Title:      "Question",
			Text:       "This poll is closed. The results are:",
			Fields: []*model.SlackAttachmentField{{
				Title: "Answer 1 (3 votes)",
				Value: "@user1, @user2 and @user3",
				Short: true,
			}, {
				Title: "Answer 2 (1 vote)",
				Value: "@user4",
				Short: true,
			}, {
				Title: "Answer 3 (0 votes)",
				Value: "",
				Short: true,
			}},
		}})

		post, err := testutils.GetPollWithVotes().ToResultsPost(bundle, l, "John Doe", convert)
		require.NoError(t, err)
		assert.Equal(t, expectedPost, post)
	})

	t.Run("anonymous", func(t *testing.T) {
		p := testutils.GetPollWithVotesAndSettings(poll.Settings{MaxVotes: 1, Anonymous: true})
		post, err := p.ToResultsPost(bundle, l, "John Doe", func(string) (string, error) {
			return "", errors.New("must not be called")
		})
		require.NoError(t, err)
		attachments := post.Attachments()
		require.Len(t, attachments, 1)
		assert.Equal(t, "", attachments[0].Fields[0].Value)
	})
}

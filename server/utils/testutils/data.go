package testutils

import (
	"github.com/mattermost/mattermost-server/v6/model"

	"github.com/profiq/open-poll/server/poll"
)

// GetPollID returns a static Poll ID.
func GetPollID() string {
	return "1234567890abcdefghij"
}

// GetPostID returns a static Post ID.
func GetPostID() string {
	return "postID1234567890abcdefgh"
}

// GetChannelID returns a static Channel ID.
func GetChannelID() string {
	return "channelID1234567890abcde"
}

// GetSiteURL returns a static Site URL.
func GetSiteURL() string {
	return "https://example.org"
}

// GetServerConfig return a static server config.
func GetServerConfig() *model.Config {
	siteURL := GetSiteURL()
	defaultClientLocale := "en"
	return &model.Config{
		ServiceSettings: model.ServiceSettings{
			SiteURL: &siteURL,
		},
		LocalizationSettings: model.LocalizationSettings{
			DefaultClientLocale: &defaultClientLocale,
		},
	}
}

// GetPoll returns a single choice Poll with three Options and no votes.
func GetPoll() *poll.Poll {
	return &poll.Poll{
		ID:        GetPollID(),
		PostID:    GetPostID(),
		ChannelID: GetChannelID(),
		CreatedAt: 1234567890,
		Creator:   "userID1",
		Question:  "Question",
		Options: []*poll.Option{
			{ID: "1", Label: "Answer 1"},
			{ID: "2", Label: "Answer 2"},
			{ID: "3", Label: "Answer 3"},
		},
		Votes:    []poll.Vote{},
		Settings: poll.Settings{MaxVotes: 1},
	}
}

// GetPollWithSettings returns a Poll with three Options, no votes and given Poll Settings.
func GetPollWithSettings(settings poll.Settings) *poll.Poll {
	p := GetPoll()
	p.Settings = settings
	return p
}

// GetPollWithVotes returns a single choice Poll with three Options and four votes.
func GetPollWithVotes() *poll.Poll {
	p := GetPoll()
	p.Votes = []poll.Vote{
		{UserID: "userID1", OptionID: "1"},
		{UserID: "userID2", OptionID: "1"},
		{UserID: "userID3", OptionID: "1"},
		{UserID: "userID4", OptionID: "2"},
	}
	return p
}

// GetPollWithVotesAndSettings returns a Poll with three Options, some votes and given Poll Settings.
func GetPollWithVotesAndSettings(settings poll.Settings) *poll.Poll {
	p := GetPollWithVotes()
	p.Settings = settings
	return p
}

// GetPollTwoOptions returns a Poll with two Options, "Yes" and "No", no votes and no Poll Settings.
func GetPollTwoOptions() *poll.Poll {
	p := GetPoll()
	p.Options = []*poll.Option{
		{ID: "1", Label: "Yes"},
		{ID: "2", Label: "No"},
	}
	return p
}

// GetMultiplePoll returns a multiple choice Poll with three Options, no votes and the given limit.
func GetMultiplePoll(maxVotes int) *poll.Poll {
	return GetPollWithSettings(poll.Settings{Multiple: true, MaxVotes: maxVotes})
}

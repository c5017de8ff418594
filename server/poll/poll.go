package poll

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/profiq/open-poll/server/utils"
)

const (
	// MinimumOptions is the smallest number of options a poll can be created with.
	MinimumOptions = 2
	// MaximumOptions is the largest number of active options a poll can hold.
	MaximumOptions = 10
)

// Poll stores all needed information for a poll
type Poll struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id,omitempty"`
	ChannelID string    `json:"channel_id"`
	CreatedAt int64     `json:"created_at"`
	Creator   string    `json:"creator"`
	Question  string    `json:"question"`
	Options   []*Option `json:"options"`
	Votes     []Vote    `json:"votes"`
	Settings  Settings  `json:"settings"`
	Closed    bool      `json:"closed"`
}

// Option is a selectable answer of a poll. Deleted options are kept for history but hidden.
type Option struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Deleted bool   `json:"deleted,omitempty"`
}

// Vote is the selection of one option by one user.
type Vote struct {
	UserID   string `json:"user_id"`
	OptionID string `json:"option_id"`
}

// NewPoll creates a new poll with the given parameter.
// The ID is left empty, it gets assigned when the poll is inserted into the store.
func NewPoll(creator, channelID, question string, options []string, settings Settings) (*Poll, *utils.ErrorMessage) {
	p := Poll{
		ChannelID: channelID,
		CreatedAt: model.GetMillis(),
		Creator:   creator,
		Question:  strings.TrimSpace(question),
		Options:   []*Option{},
		Votes:     []Vote{},
		Settings:  settings,
	}
	if p.Question == "" {
		return nil, &utils.ErrorMessage{
			Message: &i18n.Message{
				ID:    "poll.newPoll.emptyQuestion",
				Other: "Question cannot be empty.",
			},
		}
	}

	for i, option := range options {
		if errMsg := p.AddOption(strconv.Itoa(i+1), option); errMsg != nil {
			return nil, errMsg
		}
	}

	if errMsg := p.validate(); errMsg != nil {
		return nil, errMsg
	}

	return &p, nil
}

// validate checks if poll is valid
func (p *Poll) validate() *utils.ErrorMessage {
	if n := len(p.Options); n < MinimumOptions {
		return &utils.ErrorMessage{
			Message: &i18n.Message{
				ID:    "poll.newPoll.tooFewOptions",
				Other: "At least {{.Minimum}} options are required. You provided {{.Count}} option(s).",
			},
			Data: map[string]interface{}{
				"Minimum": MinimumOptions,
				"Count":   n,
			},
		}
	}
	return p.Settings.validate()
}

// AddOption appends a new option with the given ID to a poll
func (p *Poll) AddOption(id, label string) *utils.ErrorMessage {
	label = strings.TrimSpace(label)
	if label == "" {
		return &utils.ErrorMessage{
			Message: &i18n.Message{
				ID:    "poll.addOption.empty",
				Other: "Empty option not allowed",
			},
		}
	}
	active := p.ActiveOptions()
	for _, o := range active {
		if o.Label == label {
			return &utils.ErrorMessage{
				Message: &i18n.Message{
					ID:    "poll.addOption.duplicate",
					Other: "Duplicate option: {{.Option}}",
				},
				Data: map[string]interface{}{
					"Option": label,
				},
			}
		}
	}
	if len(active) >= MaximumOptions {
		return &utils.ErrorMessage{
			Message: &i18n.Message{
				ID:    "poll.addOption.tooMany",
				Other: "Maximum {{.Maximum}} options allowed.",
			},
			Data: map[string]interface{}{
				"Maximum": MaximumOptions,
			},
		}
	}
	if p.GetOption(id) != nil {
		return &utils.ErrorMessage{
			Message: &i18n.Message{
				ID:    "poll.addOption.duplicateID",
				Other: "An option with the id {{.ID}} already exists.",
			},
			Data: map[string]interface{}{
				"ID": id,
			},
		}
	}

	p.Options = append(p.Options, &Option{ID: id, Label: label})
	return nil
}

// DeleteOption soft deletes an option and drops all votes for it.
func (p *Poll) DeleteOption(id string) *utils.ErrorMessage {
	o := p.GetOption(id)
	if o == nil || o.Deleted {
		return &utils.ErrorMessage{
			Message: &i18n.Message{
				ID:    "poll.deleteOption.notFound",
				Other: "The option does not exist.",
			},
		}
	}
	if len(p.ActiveOptions()) <= MinimumOptions {
		return &utils.ErrorMessage{
			Message: &i18n.Message{
				ID:    "poll.deleteOption.tooFew",
				Other: "A poll needs at least {{.Minimum}} options.",
			},
			Data: map[string]interface{}{
				"Minimum": MinimumOptions,
			},
		}
	}

	o.Deleted = true
	votes := make([]Vote, 0, len(p.Votes))
	for _, v := range p.Votes {
		if v.OptionID != id {
			votes = append(votes, v)
		}
	}
	p.Votes = votes
	return nil
}

// GetOption returns the option with the given ID or nil if there is none.
func (p *Poll) GetOption(id string) *Option {
	for _, o := range p.Options {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// ActiveOptions returns all options which are not deleted, in display order.
func (p *Poll) ActiveOptions() []*Option {
	options := make([]*Option, 0, len(p.Options))
	for _, o := range p.Options {
		if !o.Deleted {
			options = append(options, o)
		}
	}
	return options
}

// GetVotesForUser collects all votes of a user.
func (p *Poll) GetVotesForUser(userID string) []Vote {
	votes := []Vote{}
	for _, v := range p.Votes {
		if v.UserID == userID {
			votes = append(votes, v)
		}
	}
	return votes
}

// GetVotedOptionIDs returns the IDs of the options a user voted for.
func (p *Poll) GetVotedOptionIDs(userID string) []string {
	ids := []string{}
	for _, v := range p.GetVotesForUser(userID) {
		ids = append(ids, v.OptionID)
	}
	return ids
}

// GetVoters returns the users who voted for an option, in voting order.
func (p *Poll) GetVoters(optionID string) []string {
	voters := []string{}
	for _, v := range p.Votes {
		if v.OptionID == optionID {
			voters = append(voters, v.UserID)
		}
	}
	return voters
}

// HasVoted return true if a given user has voted in this poll
func (p *Poll) HasVoted(userID string) bool {
	return len(p.GetVotesForUser(userID)) > 0
}

// TotalVotes returns the number of votes for active options.
func (p *Poll) TotalVotes() int {
	n := 0
	for _, o := range p.ActiveOptions() {
		n += len(p.GetVoters(o.ID))
	}
	return n
}

// IsCreator returns true if the given user created the poll.
func (p *Poll) IsCreator(userID string) bool {
	return userID != "" && p.Creator == userID
}

// GetMetadata returns personalized metadata of a poll.
func (p *Poll) GetMetadata(userID string) *Metadata {
	return &Metadata{
		PollID:        p.ID,
		UserID:        userID,
		CanManagePoll: p.IsCreator(userID),
		VotedOptions:  p.GetVotedOptionIDs(userID),
		SettingCustom: p.Settings.Custom,
		Closed:        p.Closed,
	}
}

// EncodeToByte returns a poll as a byte array
func (p *Poll) EncodeToByte() []byte {
	b, _ := json.Marshal(p)
	return b
}

// DecodePollFromByte tries to create a poll from a byte array
func DecodePollFromByte(b []byte) *Poll {
	p := Poll{}
	err := json.Unmarshal(b, &p)
	if err != nil {
		return nil
	}
	return &p
}

// Copy deep copies a poll
func (p *Poll) Copy() *Poll {
	p2 := new(Poll)
	*p2 = *p
	if p.Options != nil {
		p2.Options = make([]*Option, len(p.Options))
		for i, o := range p.Options {
			o2 := *o
			p2.Options[i] = &o2
		}
	}
	// Keep nil votes nil to ensure the new poll is an exact copy.
	if p.Votes != nil {
		p2.Votes = make([]Vote, len(p.Votes))
		copy(p2.Votes, p.Votes)
	}
	return p2
}

package poll

import (
	"fmt"
	"strings"

	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pkg/errors"

	"github.com/profiq/open-poll/server/utils"
)

const apiPath = "/api/v1"

// DisplayNameFunc resolves a user ID to the name shown in a poll post.
type DisplayNameFunc func(userID string) (string, error)

var (
	buttonYourVotes = &i18n.Message{
		ID:    "poll.button.yourVotes",
		Other: "Your votes",
	}
	buttonAddOption = &i18n.Message{
		ID:    "poll.button.addOption",
		Other: "Add Option",
	}
	selectDeleteOption = &i18n.Message{
		ID:    "poll.select.deleteOption",
		Other: "Delete Option",
	}
	buttonClosePoll = &i18n.Message{
		ID:    "poll.button.closePoll",
		Other: "Close Poll",
	}
	buttonDeletePoll = &i18n.Message{
		ID:    "poll.button.deletePoll",
		Other: "Delete Poll",
	}

	messagePollSettings = &i18n.Message{
		ID:    "poll.message.pollSettings",
		Other: "**Poll settings**: {{.Settings}}",
	}
	messageTotalVotes = &i18n.Message{
		ID:    "poll.message.totalVotes",
		Other: "**Total votes**: {{.TotalVotes}}",
	}
	messagePollClosed = &i18n.Message{
		ID:    "poll.message.pollClosed",
		Other: "This poll is closed",
	}
	messageResults = &i18n.Message{
		ID:    "poll.message.results",
		Other: "This poll is closed. The results are:",
	}
	messageOptionVotes = &i18n.Message{
		ID:    "poll.message.optionVotes",
		One:   "{{.Label}} ({{.Count}} vote)",
		Other: "{{.Label}} ({{.Count}} votes)",
	}
)

func actionURL(pluginID, pollID, path string) string {
	return fmt.Sprintf("/plugins/%s%s/polls/%s/%s", pluginID, apiPath, pollID, path)
}

// ToPostActions renders the poll as a message attachment with one vote button per active option.
func (p *Poll) ToPostActions(bundle *utils.Bundle, l *i18n.Localizer, pluginID, authorName string, convert DisplayNameFunc) ([]*model.SlackAttachment, error) {
	actions := []*model.PostAction{}
	lines := []string{}

	for i, o := range p.ActiveOptions() {
		voters := p.GetVoters(o.ID)
		label := fmt.Sprintf("%d. %s", i+1, o.Label)

		if !p.Closed {
			actions = append(actions, &model.PostAction{
				Id:   fmt.Sprintf("vote%d", i),
				Name: fmt.Sprintf("%s (%d)", label, len(voters)),
				Type: model.PostActionTypeButton,
				Integration: &model.PostActionIntegration{
					URL: actionURL(pluginID, p.ID, "vote/"+o.ID),
				},
			})
		}

		line := fmt.Sprintf("**%s** (%d)", label, len(voters))
		if !p.Settings.Anonymous && len(voters) > 0 {
			names, err := displayNames(voters, convert)
			if err != nil {
				return nil, err
			}
			line += ": " + strings.Join(names, ", ")
		}
		lines = append(lines, line)
	}

	lines = append(lines, "---")
	if s := p.Settings.String(); s != "" {
		lines = append(lines, bundle.LocalizeWithConfig(l, &i18n.LocalizeConfig{
			DefaultMessage: messagePollSettings,
			TemplateData:   map[string]interface{}{"Settings": s},
		}))
	}
	lines = append(lines, bundle.LocalizeWithConfig(l, &i18n.LocalizeConfig{
		DefaultMessage: messageTotalVotes,
		TemplateData:   map[string]interface{}{"TotalVotes": p.TotalVotes()},
	}))
	if p.Closed {
		lines = append(lines, "**"+bundle.LocalizeDefaultMessage(l, messagePollClosed)+"**")
	}

	actions = append(actions, p.managementActions(bundle, l, pluginID)...)

	return []*model.SlackAttachment{{
		AuthorName: authorName,
		Title:      p.Question,
		Text:       strings.Join(lines, "\n"),
		Actions:    actions,
	}}, nil
}

func (p *Poll) managementActions(bundle *utils.Bundle, l *i18n.Localizer, pluginID string) []*model.PostAction {
	deleteButton := &model.PostAction{
		Id:   "deletePoll",
		Name: bundle.LocalizeDefaultMessage(l, buttonDeletePoll),
		Type: model.PostActionTypeButton,
		Integration: &model.PostActionIntegration{
			URL: actionURL(pluginID, p.ID, "delete"),
		},
	}
	if p.Closed {
		return []*model.PostAction{deleteButton}
	}

	options := []*model.PostActionOptions{}
	for i, o := range p.ActiveOptions() {
		options = append(options, &model.PostActionOptions{
			Text:  fmt.Sprintf("%d. %s", i+1, o.Label),
			Value: o.ID,
		})
	}

	return []*model.PostAction{{
		Id:   "yourVotes",
		Name: bundle.LocalizeDefaultMessage(l, buttonYourVotes),
		Type: model.PostActionTypeButton,
		Integration: &model.PostActionIntegration{
			URL: actionURL(pluginID, p.ID, "votes"),
		},
	}, {
		Id:   "addOption",
		Name: bundle.LocalizeDefaultMessage(l, buttonAddOption),
		Type: model.PostActionTypeButton,
		Integration: &model.PostActionIntegration{
			URL: actionURL(pluginID, p.ID, "option/add/request"),
		},
	}, {
		Id:      "deleteOption",
		Name:    bundle.LocalizeDefaultMessage(l, selectDeleteOption),
		Type:    model.PostActionTypeSelect,
		Options: options,
		Integration: &model.PostActionIntegration{
			URL: actionURL(pluginID, p.ID, "option/delete"),
		},
	}, {
		Id:   "closePoll",
		Name: bundle.LocalizeDefaultMessage(l, buttonClosePoll),
		Type: model.PostActionTypeButton,
		Integration: &model.PostActionIntegration{
			URL: actionURL(pluginID, p.ID, "close"),
		},
	}, deleteButton}
}

// ToResultsPost creates the post listing the final results of a closed poll.
func (p *Poll) ToResultsPost(bundle *utils.Bundle, l *i18n.Localizer, authorName string, convert DisplayNameFunc) (*model.Post, error) {
	post := &model.Post{}
	fields := []*model.SlackAttachmentField{}

	for _, o := range p.ActiveOptions() {
		voters := p.GetVoters(o.ID)
		var value string
		if !p.Settings.Anonymous {
			names, err := displayNames(voters, convert)
			if err != nil {
				return nil, err
			}
			value = joinNames(names)
		}
		fields = append(fields, &model.SlackAttachmentField{
			Short: true,
			Title: bundle.LocalizeWithConfig(l, &i18n.LocalizeConfig{
				DefaultMessage: messageOptionVotes,
				TemplateData: map[string]interface{}{
					"Label": o.Label,
					"Count": len(voters),
				},
				PluralCount: len(voters),
			}),
			Value: value,
		})
	}

	model.ParseSlackAttachment(post, []*model.SlackAttachment{{
		AuthorName: authorName,
		Title:      p.Question,
		Text:       bundle.LocalizeDefaultMessage(l, messageResults),
		Fields:     fields,
	}})

	return post, nil
}

func displayNames(userIDs []string, convert DisplayNameFunc) ([]string, error) {
	names := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		name, err := convert(id)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get display name for user %s", id)
		}
		names = append(names, name)
	}
	return names, nil
}

// joinNames joins "a, b and c".
func joinNames(names []string) string {
	var s string
	for i, name := range names {
		if i+1 == len(names) && len(names) > 1 {
			s += " and "
		} else if i != 0 {
			s += ", "
		}
		s += name
	}
	return s
}

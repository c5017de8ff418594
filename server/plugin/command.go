package plugin

import (
	"context"
	"fmt"

	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/mattermost/mattermost-server/v6/plugin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pkg/errors"

	"github.com/profiq/open-poll/server/parser"
	"github.com/profiq/open-poll/server/poll"
	"github.com/profiq/open-poll/server/store"
	"github.com/profiq/open-poll/server/utils"
)

const (
	responseUsername = "Open Poll"

	dialogQuestionKey = "question"
	dialogOptionsKey  = "options"
	settingKeyPrefix  = "setting-"
)

var (
	commandHelpText = &i18n.Message{
		ID: "command.help.text",
		Other: "To create a poll with the options \"Yes\" and \"No\" type `/{{.Trigger}} \"Question\" Yes, No`.\n" +
			"Options are separated by commas. Settings are written in front of the question, e.g. `/{{.Trigger}} multiple limit 2 \"Question\" Answer 1, Answer 2, Answer 3`.\n" +
			"The available settings are:\n" +
			"- `multiple`: Allow users to vote for more than one option\n" +
			"- `limit N`: Allow users to vote for at most N options, N between {{.MinLimit}} and {{.MaxLimit}}\n" +
			"- `anonymous` or `-a`: Don't show who voted for what\n" +
			"- `custom` or `-c`: Allow all users to add options\n" +
			"Use `/{{.Trigger}} create` to create a poll with a form.",
	}
	commandInfoText = &i18n.Message{
		ID:    "command.info.text",
		Other: "Open Poll v{{.Version}}",
	}
	commandAutoCompleteDesc = &i18n.Message{
		ID:    "command.autoComplete.desc",
		Other: "Create a poll",
	}
	commandAutoCompleteHint = &i18n.Message{
		ID:    "command.autoComplete.hint",
		Other: "[Settings] \"Question\" Answer 1, Answer 2...",
	}

	dialogCreateTitle = &i18n.Message{
		ID:    "dialog.create.title",
		Other: "Create Poll",
	}
	dialogCreateSubmitLabel = &i18n.Message{
		ID:    "dialog.create.submitLabel",
		Other: "Create",
	}
	dialogCreateQuestion = &i18n.Message{
		ID:    "dialog.create.question",
		Other: "Question",
	}
	dialogCreateOptions = &i18n.Message{
		ID:    "dialog.create.options",
		Other: "Options",
	}
	dialogCreateOptionsHelp = &i18n.Message{
		ID:    "dialog.create.options.help",
		Other: "One option per line",
	}
	dialogCreateMultiple = &i18n.Message{
		ID:    "dialog.create.multiple",
		Other: "Allow voting for multiple options",
	}
	dialogCreateLimit = &i18n.Message{
		ID:    "dialog.create.limit",
		Other: "Maximum number of votes per user",
	}
	dialogCreateAnonymous = &i18n.Message{
		ID:    "dialog.create.anonymous",
		Other: "Anonymous",
	}
	dialogCreateCustom = &i18n.Message{
		ID:    "dialog.create.custom",
		Other: "Allow all users to add options",
	}
)

// ExecuteCommand parses a given input and creates a poll if the input is correct
func (p *OpenPollPlugin) ExecuteCommand(_ *plugin.Context, args *model.CommandArgs) (*model.CommandResponse, *model.AppError) {
	ctx := context.Background()
	userLocalizer := p.bundle.GetUserLocalizer(args.UserId)
	trigger := p.getConfiguration().Trigger

	cmd, parseErr := parser.Parse(utils.CommandArgument(args.Command, trigger))
	if parseErr != nil {
		return getCommandResponse(p.bundle.LocalizeErrorMessage(userLocalizer, parseErr.ErrorMessage)), nil
	}

	switch cmd.Kind {
	case parser.KindHelp:
		return getCommandResponse(p.bundle.LocalizeWithConfig(userLocalizer, &i18n.LocalizeConfig{
			DefaultMessage: commandHelpText,
			TemplateData: map[string]interface{}{
				"Trigger":  trigger,
				"MinLimit": parser.MinLimit,
				"MaxLimit": parser.MaxLimit,
			},
		})), nil
	case parser.KindInfo:
		return getCommandResponse(p.bundle.LocalizeWithConfig(userLocalizer, &i18n.LocalizeConfig{
			DefaultMessage: commandInfoText,
			TemplateData:   map[string]interface{}{"Version": manifest.Version},
		})), nil
	case parser.KindCreate:
		if appErr := p.API.OpenInteractiveDialog(p.getCreatePollDialog(args.TriggerId, userLocalizer)); appErr != nil {
			p.API.LogWarn("Failed to open create poll dialog", "error", appErr.Error())
			return getCommandResponse(p.bundle.LocalizeDefaultMessage(userLocalizer, commandErrorGeneric)), nil
		}
		return &model.CommandResponse{}, nil
	}

	errMsg, err := p.createPoll(ctx, args.UserId, args.ChannelId, cmd.Question, cmd.Options, cmd.Flags.Settings())
	if err != nil {
		p.API.LogWarn("Failed to create poll", "error", err.Error())
		return getCommandResponse(p.bundle.LocalizeDefaultMessage(userLocalizer, commandErrorGeneric)), nil
	}
	if errMsg != nil {
		return getCommandResponse(p.bundle.LocalizeErrorMessage(userLocalizer, errMsg)), nil
	}
	return &model.CommandResponse{}, nil
}

// createPoll stores a new poll and posts it into the channel.
// Invalid input is reported with an ErrorMessage, failures with an error.
func (p *OpenPollPlugin) createPoll(ctx context.Context, creatorID, channelID, question string, options []string, settings poll.Settings) (*utils.ErrorMessage, error) {
	newPoll, errMsg := poll.NewPoll(creatorID, channelID, question, options, settings)
	if errMsg != nil {
		return errMsg, nil
	}

	if err := p.Store.Poll().Insert(ctx, newPoll); err != nil {
		return nil, errors.Wrap(err, "failed to save poll")
	}

	post, err := p.renderPoll(newPoll)
	if err != nil {
		p.dropPoll(ctx, newPoll.ID)
		return nil, err
	}
	post.ChannelId = channelID
	post.UserId = creatorID

	created, appErr := p.API.CreatePost(post)
	if appErr != nil {
		p.dropPoll(ctx, newPoll.ID)
		return nil, errors.Wrap(appErr, "failed to create post")
	}

	postID := created.Id
	err = p.Store.Poll().RunTransaction(ctx, func(tx store.PollTx) error {
		return tx.Update(newPoll.ID, poll.Patch{PostID: &postID})
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to save post ID")
	}

	p.API.LogDebug("Created a new poll", "pollID", newPoll.ID, "postID", postID)
	return nil, nil
}

// dropPoll removes a poll that could not be posted.
func (p *OpenPollPlugin) dropPoll(ctx context.Context, pollID string) {
	if err := p.Store.Poll().Delete(ctx, pollID); err != nil {
		p.API.LogWarn("Failed to delete unposted poll", "pollID", pollID, "error", err.Error())
	}
}

func (p *OpenPollPlugin) getCreatePollDialog(triggerID string, l *i18n.Localizer) model.OpenDialogRequest {
	return model.OpenDialogRequest{
		TriggerId: triggerID,
		URL:       fmt.Sprintf("/plugins/%s/api/%s/polls/create", manifest.Id, CurrentAPIVersion),
		Dialog: model.Dialog{
			Title:       p.bundle.LocalizeDefaultMessage(l, dialogCreateTitle),
			SubmitLabel: p.bundle.LocalizeDefaultMessage(l, dialogCreateSubmitLabel),
			Elements: []model.DialogElement{{
				DisplayName: p.bundle.LocalizeDefaultMessage(l, dialogCreateQuestion),
				Name:        dialogQuestionKey,
				Type:        "text",
				SubType:     "text",
			}, {
				DisplayName: p.bundle.LocalizeDefaultMessage(l, dialogCreateOptions),
				Name:        dialogOptionsKey,
				Type:        "textarea",
				HelpText:    p.bundle.LocalizeDefaultMessage(l, dialogCreateOptionsHelp),
			}, {
				DisplayName: p.bundle.LocalizeDefaultMessage(l, dialogCreateMultiple),
				Name:        settingKeyPrefix + poll.SettingKeyMultiple,
				Type:        "bool",
				Optional:    true,
			}, {
				DisplayName: p.bundle.LocalizeDefaultMessage(l, dialogCreateLimit),
				Name:        settingKeyPrefix + poll.SettingKeyLimit,
				Type:        "text",
				SubType:     "number",
				Optional:    true,
			}, {
				DisplayName: p.bundle.LocalizeDefaultMessage(l, dialogCreateAnonymous),
				Name:        settingKeyPrefix + poll.SettingKeyAnonymous,
				Type:        "bool",
				Optional:    true,
			}, {
				DisplayName: p.bundle.LocalizeDefaultMessage(l, dialogCreateCustom),
				Name:        settingKeyPrefix + poll.SettingKeyCustom,
				Type:        "bool",
				Optional:    true,
			}},
		},
	}
}

func getCommandResponse(text string) *model.CommandResponse {
	return &model.CommandResponse{
		ResponseType: model.CommandResponseTypeEphemeral,
		Text:         text,
		Username:     responseUsername,
		Type:         model.PostTypeDefault,
	}
}

func (p *OpenPollPlugin) getCommand(trigger string) *model.Command {
	l := p.bundle.GetServerLocalizer()
	return &model.Command{
		Trigger:          trigger,
		DisplayName:      "Open Poll",
		Description:      "Polling feature",
		AutoComplete:     true,
		AutoCompleteDesc: p.bundle.LocalizeDefaultMessage(l, commandAutoCompleteDesc),
		AutoCompleteHint: p.bundle.LocalizeDefaultMessage(l, commandAutoCompleteHint),
	}
}

package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/mattermost/mattermost-server/v6/plugin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pkg/errors"

	"github.com/profiq/open-poll/server/poll"
	"github.com/profiq/open-poll/server/store"
	"github.com/profiq/open-poll/server/utils"
)

const (
	addOptionKey = "answerOption"

	// selectedOptionKey is the context key under which the client sends the chosen value of a select action.
	selectedOptionKey = "selected_option"
)

type (
	postActionHandler   func(context.Context, map[string]string, *model.PostActionIntegrationRequest) (*i18n.LocalizeConfig, *model.Post, error)
	submitDialogHandler func(context.Context, map[string]string, *model.SubmitDialogRequest) (*i18n.LocalizeConfig, *model.SubmitDialogResponse, error)
)

var (
	dialogAddOptionTitle = &i18n.Message{
		ID:    "dialog.addOption.title",
		Other: "Add Option",
	}
	dialogAddOptionSubmitLabel = &i18n.Message{
		ID:    "dialog.addOption.submitLabel",
		Other: "Add",
	}
	dialogAddOptionElement = &i18n.Message{
		ID:    "dialog.addOption.element.displayName",
		Other: "Option",
	}
)

func infoMessage() string {
	return "Thanks for using Open Poll v" + manifest.Version + "\n"
}

// InitAPI initializes the REST API
func (p *OpenPollPlugin) InitAPI() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", p.handleInfo).Methods(http.MethodGet)

	apiV1 := r.PathPrefix("/api/" + CurrentAPIVersion).Subrouter()
	apiV1.Use(checkAuthenticity)
	apiV1.HandleFunc("/polls", p.handleListPolls).Methods(http.MethodGet)
	apiV1.HandleFunc("/polls/create", p.handleSubmitDialogRequest(p.handleCreatePoll)).Methods(http.MethodPost)

	pollRouter := apiV1.PathPrefix("/polls/{id:[a-z0-9]+}").Subrouter()
	pollRouter.HandleFunc("/vote/{optionID:[a-z0-9-]+}", p.handlePostActionIntegrationRequest(p.handleVote)).Methods(http.MethodPost)
	pollRouter.HandleFunc("/votes", p.handlePostActionIntegrationRequest(p.handleUserVotes)).Methods(http.MethodPost)
	pollRouter.HandleFunc("/option/add/request", p.handlePostActionIntegrationRequest(p.handleAddOption)).Methods(http.MethodPost)
	pollRouter.HandleFunc("/option/add", p.handleSubmitDialogRequest(p.handleAddOptionConfirm)).Methods(http.MethodPost)
	pollRouter.HandleFunc("/option/delete", p.handlePostActionIntegrationRequest(p.handleDeleteOption)).Methods(http.MethodPost)
	pollRouter.HandleFunc("/close", p.handlePostActionIntegrationRequest(p.handleClosePoll)).Methods(http.MethodPost)
	pollRouter.HandleFunc("/delete", p.handlePostActionIntegrationRequest(p.handleDeletePoll)).Methods(http.MethodPost)
	pollRouter.HandleFunc("/metadata", p.handlePollMetadata).Methods(http.MethodGet)
	return r
}

func (p *OpenPollPlugin) ServeHTTP(_ *plugin.Context, w http.ResponseWriter, r *http.Request) {
	p.API.LogDebug("New request:", "Host", r.Host, "RequestURI", r.RequestURI, "Method", r.Method)
	p.router.ServeHTTP(w, r)
}

func (p *OpenPollPlugin) handleInfo(w http.ResponseWriter, _ *http.Request) {
	_, _ = io.WriteString(w, infoMessage())
}

func checkAuthenticity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Mattermost-User-ID") == "" {
			http.Error(w, "not authorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (p *OpenPollPlugin) handlePostActionIntegrationRequest(handler postActionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request model.PostActionIntegrationRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			p.API.LogWarn("failed to decode PostActionIntegrationRequest", "error", err.Error())
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		request.UserId = r.Header.Get("Mattermost-User-ID")

		msg, update, err := handler(r.Context(), mux.Vars(r), &request)
		if err != nil {
			p.API.LogWarn("failed to handle PostActionIntegrationRequest", "error", err.Error())
		}

		if msg != nil {
			userLocalizer := p.bundle.GetUserLocalizer(request.UserId)
			p.SendEphemeralPost(request.ChannelId, request.UserId, p.bundle.LocalizeWithConfig(userLocalizer, msg))
		}

		response := &model.PostActionIntegrationResponse{}
		if update != nil {
			response.Update = update
		}
		p.writeJSON(w, response)
	}
}

func (p *OpenPollPlugin) handleSubmitDialogRequest(handler submitDialogHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request model.SubmitDialogRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			p.API.LogWarn("failed to decode SubmitDialogRequest", "error", err.Error())
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		request.UserId = r.Header.Get("Mattermost-User-ID")

		msg, response, err := handler(r.Context(), mux.Vars(r), &request)
		if err != nil {
			p.API.LogWarn("failed to handle SubmitDialogRequest", "error", err.Error())
		}

		if msg != nil {
			userLocalizer := p.bundle.GetUserLocalizer(request.UserId)
			p.SendEphemeralPost(request.ChannelId, request.UserId, p.bundle.LocalizeWithConfig(userLocalizer, msg))
		}

		if response != nil {
			p.writeJSON(w, response)
		}
	}
}

func (p *OpenPollPlugin) writeJSON(w http.ResponseWriter, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		p.API.LogWarn("failed to encode response", "error", err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err = w.Write(b); err != nil {
		p.API.LogWarn("failed to write response", "error", err.Error())
	}
}

func (p *OpenPollPlugin) handleCreatePoll(ctx context.Context, _ map[string]string, request *model.SubmitDialogRequest) (*i18n.LocalizeConfig, *model.SubmitDialogResponse, error) {
	userLocalizer := p.bundle.GetUserLocalizer(request.UserId)
	fieldError := func(field string, errMsg *utils.ErrorMessage) *model.SubmitDialogResponse {
		return &model.SubmitDialogResponse{
			Errors: map[string]string{
				field: p.bundle.LocalizeErrorMessage(userLocalizer, errMsg),
			},
		}
	}

	question, _ := request.Submission[dialogQuestionKey].(string)
	rawOptions, _ := request.Submission[dialogOptionsKey].(string)
	options := []string{}
	for _, o := range strings.Split(rawOptions, "\n") {
		if o = strings.TrimSpace(o); o != "" {
			options = append(options, o)
		}
	}

	settings, errMsg := poll.NewSettingsFromSubmission(request.Submission)
	if errMsg != nil {
		return nil, fieldError(settingKeyPrefix+poll.SettingKeyLimit, errMsg), nil
	}

	errMsg, err := p.createPoll(ctx, request.UserId, request.ChannelId, question, options, settings)
	if err != nil {
		return localizeMessage(commandErrorGeneric), nil, err
	}
	if errMsg != nil {
		field := dialogOptionsKey
		if strings.TrimSpace(question) == "" {
			field = dialogQuestionKey
		}
		return nil, fieldError(field, errMsg), nil
	}
	return nil, nil, nil
}

func (p *OpenPollPlugin) handleVote(ctx context.Context, vars map[string]string, request *model.PostActionIntegrationRequest) (*i18n.LocalizeConfig, *model.Post, error) {
	pollID := vars["id"]
	userID := request.UserId

	outcome, err := p.engine.Vote(ctx, pollID, poll.Vote{UserID: userID, OptionID: vars["optionID"]})
	var voteErr *poll.VoteError
	if errors.As(err, &voteErr) {
		if voteErr.Retryable() {
			return voteErr.Message().LocalizeConfig(), nil, err
		}
		return voteErr.Message().LocalizeConfig(), nil, nil
	}
	if err != nil {
		return localizeMessage(commandErrorGeneric), nil, err
	}

	var msg *i18n.LocalizeConfig
	switch outcome.Action {
	case poll.ActionAdded:
		msg = localizeMessage(responseVoteCounted)
	case poll.ActionRemoved:
		msg = localizeMessage(responseVoteRemoved)
	default:
		msg = localizeMessage(responseVoteUpdated)
	}

	updated, err := p.Store.Poll().Get(ctx, pollID)
	if err != nil {
		return msg, nil, errors.Wrap(err, "failed to get poll")
	}
	post, err := p.renderPoll(updated)
	if err != nil {
		return msg, nil, err
	}

	p.publishPollMetadata(updated, userID)
	return msg, post, nil
}

func (p *OpenPollPlugin) publishPollMetadata(pl *poll.Poll, userID string) {
	metadata := pl.GetMetadata(userID)
	p.API.PublishWebSocketEvent("has_voted", metadata.ToMap(), &model.WebsocketBroadcast{UserId: userID})
}

func (p *OpenPollPlugin) handleUserVotes(ctx context.Context, vars map[string]string, request *model.PostActionIntegrationRequest) (*i18n.LocalizeConfig, *model.Post, error) {
	pl, msg, err := p.getPoll(ctx, vars["id"])
	if pl == nil {
		return msg, nil, err
	}

	labels := []string{}
	for i, o := range pl.ActiveOptions() {
		for _, id := range pl.GetVotedOptionIDs(request.UserId) {
			if id == o.ID {
				labels = append(labels, fmt.Sprintf("**%d. %s**", i+1, o.Label))
			}
		}
	}
	if len(labels) == 0 {
		return localizeMessage(responseYourVotesNone), nil, nil
	}

	return &i18n.LocalizeConfig{
		DefaultMessage: responseYourVotes,
		TemplateData:   map[string]interface{}{"Options": strings.Join(labels, ", ")},
	}, nil, nil
}

// getPoll loads a poll. If it can not be loaded, the returned message explains why.
func (p *OpenPollPlugin) getPoll(ctx context.Context, pollID string) (*poll.Poll, *i18n.LocalizeConfig, error) {
	pl, err := p.Store.Poll().Get(ctx, pollID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, localizeMessage(responsePollNotFound), nil
	}
	if err != nil {
		return nil, localizeMessage(commandErrorGeneric), errors.Wrap(err, "failed to get poll")
	}
	return pl, nil, nil
}

func (p *OpenPollPlugin) handleAddOption(ctx context.Context, vars map[string]string, request *model.PostActionIntegrationRequest) (*i18n.LocalizeConfig, *model.Post, error) {
	pollID := vars["id"]
	userLocalizer := p.bundle.GetUserLocalizer(request.UserId)

	pl, msg, err := p.getPoll(ctx, pollID)
	if pl == nil {
		return msg, nil, err
	}
	if pl.Closed {
		return localizeMessage(responsePollAlreadyClosed), nil, nil
	}
	if !pl.Settings.Custom && !pl.IsCreator(request.UserId) {
		return localizeMessage(responseAddOptionInvalidPermission), nil, nil
	}

	dialog := model.OpenDialogRequest{
		TriggerId: request.TriggerId,
		URL:       fmt.Sprintf("/plugins/%s/api/%s/polls/%s/option/add", manifest.Id, CurrentAPIVersion, pollID),
		Dialog: model.Dialog{
			Title:       p.bundle.LocalizeDefaultMessage(userLocalizer, dialogAddOptionTitle),
			CallbackId:  request.PostId,
			SubmitLabel: p.bundle.LocalizeDefaultMessage(userLocalizer, dialogAddOptionSubmitLabel),
			Elements: []model.DialogElement{{
				DisplayName: p.bundle.LocalizeDefaultMessage(userLocalizer, dialogAddOptionElement),
				Name:        addOptionKey,
				Type:        "text",
				SubType:     "text",
			}},
		},
	}

	if appErr := p.API.OpenInteractiveDialog(dialog); appErr != nil {
		return localizeMessage(commandErrorGeneric), nil, errors.Wrap(appErr, "failed to open add option dialog")
	}
	return nil, nil, nil
}

func (p *OpenPollPlugin) handleAddOptionConfirm(ctx context.Context, vars map[string]string, request *model.SubmitDialogRequest) (*i18n.LocalizeConfig, *model.SubmitDialogResponse, error) {
	pollID := vars["id"]
	userID := request.UserId

	label, ok := request.Submission[addOptionKey].(string)
	if !ok {
		return localizeMessage(commandErrorGeneric), nil, errors.Errorf("failed to get submission key: %s", addOptionKey)
	}

	var rejection *i18n.LocalizeConfig
	var errMsg *utils.ErrorMessage
	err := p.Store.Poll().RunTransaction(ctx, func(tx store.PollTx) error {
		rejection, errMsg = nil, nil

		pl, err := tx.Get(pollID)
		if err != nil {
			return err
		}
		switch {
		case pl.Closed:
			rejection = localizeMessage(responsePollAlreadyClosed)
			return nil
		case !pl.Settings.Custom && !pl.IsCreator(userID):
			rejection = localizeMessage(responseAddOptionInvalidPermission)
			return nil
		}

		if errMsg = pl.AddOption(uuid.NewString(), label); errMsg != nil {
			return nil
		}
		return tx.Update(pollID, poll.Patch{Options: pl.Options})
	})
	if errors.Is(err, store.ErrNotFound) {
		return localizeMessage(responsePollNotFound), nil, nil
	}
	if err != nil {
		return localizeMessage(commandErrorGeneric), nil, errors.Wrap(err, "failed to add option")
	}
	if rejection != nil {
		return rejection, nil, nil
	}
	if errMsg != nil {
		userLocalizer := p.bundle.GetUserLocalizer(userID)
		return nil, &model.SubmitDialogResponse{
			Errors: map[string]string{
				addOptionKey: p.bundle.LocalizeErrorMessage(userLocalizer, errMsg),
			},
		}, nil
	}

	if err := p.updatePollPost(ctx, pollID, request.CallbackId); err != nil {
		return localizeMessage(commandErrorGeneric), nil, err
	}
	return localizeMessage(responseAddOptionSuccess), nil, nil
}

// updatePollPost re-renders the post of a poll after it was changed outside of a post action.
func (p *OpenPollPlugin) updatePollPost(ctx context.Context, pollID, postID string) error {
	pl, err := p.Store.Poll().Get(ctx, pollID)
	if err != nil {
		return errors.Wrap(err, "failed to get poll")
	}

	rendered, err := p.renderPoll(pl)
	if err != nil {
		return err
	}
	post, appErr := p.API.GetPost(postID)
	if appErr != nil {
		return errors.Wrap(appErr, "failed to get post")
	}
	model.ParseSlackAttachment(post, rendered.Attachments())
	post.AddProp("poll_id", pl.ID)
	if _, appErr = p.API.UpdatePost(post); appErr != nil {
		return errors.Wrap(appErr, "failed to update post")
	}
	return nil
}

func (p *OpenPollPlugin) handleDeleteOption(ctx context.Context, vars map[string]string, request *model.PostActionIntegrationRequest) (*i18n.LocalizeConfig, *model.Post, error) {
	pollID := vars["id"]
	optionID, _ := request.Context[selectedOptionKey].(string)

	var rejection *i18n.LocalizeConfig
	err := p.Store.Poll().RunTransaction(ctx, func(tx store.PollTx) error {
		rejection = nil

		pl, err := tx.Get(pollID)
		if err != nil {
			return err
		}
		switch {
		case !pl.IsCreator(request.UserId):
			rejection = localizeMessage(responseDeleteOptionInvalidPermission)
			return nil
		case pl.Closed:
			rejection = localizeMessage(responsePollAlreadyClosed)
			return nil
		}

		if errMsg := pl.DeleteOption(optionID); errMsg != nil {
			rejection = errMsg.LocalizeConfig()
			return nil
		}
		return tx.Update(pollID, poll.Patch{Options: pl.Options, Votes: pl.Votes})
	})
	if errors.Is(err, store.ErrNotFound) {
		return localizeMessage(responsePollNotFound), nil, nil
	}
	if err != nil {
		return localizeMessage(commandErrorGeneric), nil, errors.Wrap(err, "failed to delete option")
	}
	if rejection != nil {
		return rejection, nil, nil
	}

	post, err := p.getRenderedPoll(ctx, pollID)
	if err != nil {
		return localizeMessage(commandErrorGeneric), nil, err
	}
	return localizeMessage(responseDeleteOptionSuccess), post, nil
}

func (p *OpenPollPlugin) getRenderedPoll(ctx context.Context, pollID string) (*model.Post, error) {
	pl, err := p.Store.Poll().Get(ctx, pollID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get poll")
	}
	return p.renderPoll(pl)
}

func (p *OpenPollPlugin) handleClosePoll(ctx context.Context, vars map[string]string, request *model.PostActionIntegrationRequest) (*i18n.LocalizeConfig, *model.Post, error) {
	pollID := vars["id"]

	var rejection *i18n.LocalizeConfig
	err := p.Store.Poll().RunTransaction(ctx, func(tx store.PollTx) error {
		rejection = nil

		pl, err := tx.Get(pollID)
		if err != nil {
			return err
		}
		switch {
		case !pl.IsCreator(request.UserId):
			rejection = localizeMessage(responseClosePollInvalidPermission)
			return nil
		case pl.Closed:
			rejection = localizeMessage(responsePollAlreadyClosed)
			return nil
		}

		closed := true
		return tx.Update(pollID, poll.Patch{Closed: &closed})
	})
	if errors.Is(err, store.ErrNotFound) {
		return localizeMessage(responsePollNotFound), nil, nil
	}
	if err != nil {
		return localizeMessage(commandErrorGeneric), nil, errors.Wrap(err, "failed to close poll")
	}
	if rejection != nil {
		return rejection, nil, nil
	}

	pl, err := p.Store.Poll().Get(ctx, pollID)
	if err != nil {
		return localizeMessage(commandErrorGeneric), nil, errors.Wrap(err, "failed to get poll")
	}
	post, err := p.renderPoll(pl)
	if err != nil {
		return localizeMessage(commandErrorGeneric), nil, err
	}

	p.postResults(pl, request.PostId)

	return &i18n.LocalizeConfig{
		DefaultMessage: responseClosePollSuccess,
		TemplateData:   map[string]interface{}{"Question": pl.Question},
	}, post, nil
}

// postResults posts the final results of a closed poll as a reply to the poll.
func (p *OpenPollPlugin) postResults(pl *poll.Poll, postID string) {
	authorName, err := p.ConvertCreatorIDToDisplayName(pl.Creator)
	if err != nil {
		p.API.LogWarn("Failed to post the poll results", "details", "failed to get display name for creator", "error", err.Error())
		return
	}
	results, err := pl.ToResultsPost(p.bundle, p.bundle.GetServerLocalizer(), authorName, p.ConvertUserIDToDisplayName)
	if err != nil {
		p.API.LogWarn("Failed to post the poll results", "details", "failed to render results", "error", err.Error())
		return
	}

	results.UserId = pl.Creator
	results.ChannelId = pl.ChannelID
	results.RootId = postID
	if _, appErr := p.API.CreatePost(results); appErr != nil {
		p.API.LogWarn("Failed to post the poll results", "details", "failed to CreatePost", "error", appErr.Error())
	}
}

func (p *OpenPollPlugin) handleDeletePoll(ctx context.Context, vars map[string]string, request *model.PostActionIntegrationRequest) (*i18n.LocalizeConfig, *model.Post, error) {
	pollID := vars["id"]

	pl, msg, err := p.getPoll(ctx, pollID)
	if pl == nil {
		return msg, nil, err
	}
	if !pl.IsCreator(request.UserId) {
		return localizeMessage(responseDeletePollInvalidPermission), nil, nil
	}

	if appErr := p.API.DeletePost(request.PostId); appErr != nil {
		return localizeMessage(commandErrorGeneric), nil, errors.Wrap(appErr, "failed to delete post")
	}

	if err := p.Store.Poll().Delete(ctx, pollID); err != nil {
		return localizeMessage(commandErrorGeneric), nil, errors.Wrap(err, "failed to delete poll")
	}

	return localizeMessage(responseDeletePollSuccess), nil, nil
}

func (p *OpenPollPlugin) handleListPolls(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("Mattermost-User-ID")

	polls, err := p.Store.Poll().List(r.Context())
	if err != nil {
		p.API.LogWarn("failed to list polls", "error", err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	own := []*poll.Poll{}
	for _, pl := range polls {
		if pl.IsCreator(userID) {
			own = append(own, pl)
		}
	}
	sort.SliceStable(own, func(i, j int) bool {
		return own[i].CreatedAt > own[j].CreatedAt
	})

	p.writeJSON(w, own)
}

func (p *OpenPollPlugin) handlePollMetadata(w http.ResponseWriter, r *http.Request) {
	pollID := mux.Vars(r)["id"]
	userID := r.Header.Get("Mattermost-User-ID")

	pl, err := p.Store.Poll().Get(r.Context(), pollID)
	if errors.Is(err, store.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		p.API.LogWarn("failed to get poll", "error", err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	p.writeJSON(w, pl.GetMetadata(userID))
}

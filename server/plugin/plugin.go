package plugin

import (
	"context"
	"fmt"
	"sync"

	"github.com/blang/semver/v4"
	"github.com/gorilla/mux"
	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/mattermost/mattermost-server/v6/plugin"
	"github.com/pkg/errors"

	"github.com/profiq/open-poll/server/poll"
	"github.com/profiq/open-poll/server/store"
	"github.com/profiq/open-poll/server/store/firestore"
	"github.com/profiq/open-poll/server/store/kvstore"
	"github.com/profiq/open-poll/server/utils"
	"github.com/profiq/open-poll/server/voting"
)

// OpenPollPlugin is the object to run the plugin
type OpenPollPlugin struct {
	plugin.MattermostPlugin
	router *mux.Router
	bundle *utils.Bundle
	Store  store.Store
	engine *voting.Engine

	// closeStore releases the store backend. It is nil for backends without connections.
	closeStore func() error

	// configurationLock synchronizes access to the configuration.
	configurationLock sync.RWMutex

	// configuration is the active plugin configuration. Consult getConfiguration and
	// setConfiguration for usage.
	configuration *configuration
	ServerConfig  *model.Config
}

const minimumServerVersion = "6.5.0"

// NewOpenPollPlugin returns an initialized plugin.
func NewOpenPollPlugin() *OpenPollPlugin {
	return &OpenPollPlugin{}
}

// OnActivate ensures a configuration is set and initializes the API
func (p *OpenPollPlugin) OnActivate() error {
	if err := p.checkServerVersion(); err != nil {
		return err
	}
	ctx := context.Background()

	bundle, err := utils.InitBundle(p.API, "assets/i18n")
	if err != nil {
		return err
	}

	kv, closeStore, err := p.newKV(ctx, p.getConfiguration())
	if err != nil {
		return errors.Wrap(err, "failed to create store")
	}
	s := store.NewStore(kv)
	if err = store.UpdateDatabase(ctx, s, manifest.Version, p.API); err != nil {
		if closeStore != nil {
			_ = closeStore()
		}
		return errors.Wrap(err, "failed to update database")
	}

	p.bundle = bundle
	p.Store = s
	p.closeStore = closeStore
	p.engine = voting.NewEngine(s.Poll(), p.API)
	p.router = p.InitAPI()

	if err := p.API.RegisterCommand(p.getCommand(p.getConfiguration().Trigger)); err != nil {
		return errors.Wrap(err, "failed to register command")
	}
	return nil
}

// OnDeactivate unregisters the command and releases the store
func (p *OpenPollPlugin) OnDeactivate() error {
	if err := p.API.UnregisterCommand("", p.getConfiguration().Trigger); err != nil {
		return errors.Wrap(err, "failed to deactivate command")
	}
	if p.closeStore != nil {
		if err := p.closeStore(); err != nil {
			return errors.Wrap(err, "failed to close store")
		}
	}
	return nil
}

func (p *OpenPollPlugin) isActivated() bool {
	return p.bundle != nil
}

// newKV creates the configured store backend.
func (p *OpenPollPlugin) newKV(ctx context.Context, c *configuration) (store.KV, func() error, error) {
	if c.StoreBackend != storeBackendFirestore {
		return kvstore.NewStore(p.API, c.TransactionMaxAttempts), nil, nil
	}

	fs, err := firestore.NewStore(ctx, firestore.Config{
		ProjectID:   c.FirestoreProjectID,
		Credentials: c.FirestoreCredentials,
		Collection:  c.FirestoreCollection,
		MaxAttempts: c.TransactionMaxAttempts,
	})
	if err != nil {
		return nil, nil, err
	}
	p.API.LogInfo("Using Firestore to store polls", "projectID", c.FirestoreProjectID)
	return fs, fs.Close, nil
}

// checkServerVersion checks Mattermost Server has at least the required version
func (p *OpenPollPlugin) checkServerVersion() error {
	serverVersion, err := semver.Parse(p.API.GetServerVersion())
	if err != nil {
		return errors.Wrap(err, "failed to parse server version")
	}

	r := semver.MustParseRange(">=" + minimumServerVersion)
	if !r(serverVersion) {
		return fmt.Errorf("this plugin requires Mattermost v%s or later", minimumServerVersion)
	}

	return nil
}

// ConvertUserIDToDisplayName returns the display name to a given user ID
func (p *OpenPollPlugin) ConvertUserIDToDisplayName(userID string) (string, error) {
	user, appErr := p.API.GetUser(userID)
	if appErr != nil {
		return "", appErr
	}
	return "@" + user.GetDisplayName(model.ShowUsername), nil
}

// ConvertCreatorIDToDisplayName returns the display name to a given user ID of a poll creator
func (p *OpenPollPlugin) ConvertCreatorIDToDisplayName(creatorID string) (string, error) {
	user, appErr := p.API.GetUser(creatorID)
	if appErr != nil {
		return "", appErr
	}
	return user.GetDisplayName(model.ShowNicknameFullName), nil
}

// renderPoll creates the post showing the current state of a poll.
func (p *OpenPollPlugin) renderPoll(pl *poll.Poll) (*model.Post, error) {
	authorName, err := p.ConvertCreatorIDToDisplayName(pl.Creator)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get display name for creator")
	}

	attachments, err := pl.ToPostActions(p.bundle, p.bundle.GetServerLocalizer(), manifest.Id, authorName, p.ConvertUserIDToDisplayName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render poll")
	}

	post := &model.Post{}
	model.ParseSlackAttachment(post, attachments)
	post.AddProp("poll_id", pl.ID)
	return post, nil
}

// SendEphemeralPost sends a message only visible to the given user.
func (p *OpenPollPlugin) SendEphemeralPost(channelID, userID, message string) {
	// This is mostly taken from https://github.com/mattermost/mattermost-server/blob/master/app/command.go#L304
	ephemeralPost := &model.Post{}
	ephemeralPost.ChannelId = channelID
	ephemeralPost.UserId = userID
	ephemeralPost.Message = message
	ephemeralPost.AddProp("override_username", responseUsername)
	ephemeralPost.AddProp("from_webhook", "true")
	_ = p.API.SendEphemeralPost(userID, ephemeralPost)
}

package plugin

import (
	"github.com/pkg/errors"
)

const (
	storeBackendKV        = "kvstore"
	storeBackendFirestore = "firestore"
)

// configuration captures the plugin's external configuration as exposed in the Mattermost server
// configuration, as well as values computed from the configuration. Any public fields will be
// deserialized from the Mattermost server configuration in OnConfigurationChange.
type configuration struct {
	Trigger string `json:"trigger"`

	// StoreBackend selects where polls are stored. It is only read on activation.
	StoreBackend           string `json:"storebackend"`
	FirestoreProjectID     string `json:"firestoreprojectid"`
	FirestoreCredentials   string `json:"firestorecredentials"`
	FirestoreCollection    string `json:"firestorecollection"`
	TransactionMaxAttempts int    `json:"transactionmaxattempts"`
}

func (c *configuration) validate() error {
	if c.Trigger == "" {
		return errors.New("empty trigger not allowed")
	}

	switch c.StoreBackend {
	case "", storeBackendKV:
	case storeBackendFirestore:
		if c.FirestoreProjectID == "" {
			return errors.New("firestore backend requires a project ID")
		}
	default:
		return errors.Errorf("unknown store backend %q", c.StoreBackend)
	}

	if c.TransactionMaxAttempts < 0 {
		return errors.New("transaction attempts must not be negative")
	}
	return nil
}

// OnConfigurationChange loads the plugin configuration, validates it and saves it.
func (p *OpenPollPlugin) OnConfigurationChange() error {
	configuration := new(configuration)
	oldConfiguration := p.getConfiguration()
	p.ServerConfig = p.API.GetConfig()

	if err := p.API.LoadPluginConfiguration(configuration); err != nil {
		return errors.Wrap(err, "failed to load plugin configuration")
	}

	if err := configuration.validate(); err != nil {
		return errors.Wrap(err, "invalid plugin configuration")
	}

	// This require a loaded i18n bundle
	if p.isActivated() {
		if oldConfiguration.Trigger != "" {
			if err := p.API.UnregisterCommand("", oldConfiguration.Trigger); err != nil {
				return errors.Wrap(err, "failed to unregister old command")
			}
		}
		if err := p.API.RegisterCommand(p.getCommand(configuration.Trigger)); err != nil {
			return errors.Wrap(err, "failed to register new command")
		}
		if oldConfiguration.StoreBackend != configuration.StoreBackend {
			p.API.LogWarn("The store backend was changed. Restart the plugin to use it.", "old", oldConfiguration.StoreBackend, "new", configuration.StoreBackend)
		}
	}

	p.setConfiguration(configuration)
	return nil
}

// getConfiguration retrieves the active configuration under lock, making it safe to use
// concurrently. The active configuration may change underneath the client of this method, but
// the struct returned by this API call is considered immutable.
func (p *OpenPollPlugin) getConfiguration() *configuration {
	p.configurationLock.RLock()
	defer p.configurationLock.RUnlock()

	if p.configuration == nil {
		return &configuration{}
	}
	return p.configuration
}

// setConfiguration replaces the active configuration under lock.
//
// Do not call setConfiguration while holding the configurationLock, as sync.Mutex is not
// reentrant. In particular, avoid using the plugin API entirely, as this may in turn trigger a
// hook back into the plugin. If that hook attempts to acquire this lock, a deadlock may occur.
//
// This method panics if setConfiguration is called with the existing configuration. This almost
// certainly means that the configuration was modified without being cloned and may result in
// an unsafe access.
func (p *OpenPollPlugin) setConfiguration(configuration *configuration) {
	p.configurationLock.Lock()
	defer p.configurationLock.Unlock()

	if configuration != nil && p.configuration == configuration {
		panic("setConfiguration called with the existing configuration")
	}
	p.configuration = configuration
}

package main

import (
	mmplugin "github.com/mattermost/mattermost-server/v6/plugin"

	"github.com/profiq/open-poll/server/plugin"
)

func main() {
	mmplugin.ClientMain(plugin.NewOpenPollPlugin())
}

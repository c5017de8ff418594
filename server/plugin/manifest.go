package plugin

import (
	root "github.com/profiq/open-poll"
)

var manifest = root.Manifest

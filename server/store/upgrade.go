package store

import (
	"context"

	"github.com/blang/semver/v4"
	"github.com/pkg/errors"
)

// UpdateDatabase records the schema version of the given plugin version on a fresh install.
func UpdateDatabase(ctx context.Context, s Store, pluginVersion string, log Logger) error {
	newestSchema, err := semver.Parse(pluginVersion)
	if err != nil {
		return errors.Wrapf(err, "failed to parse plugin version %s", pluginVersion)
	}
	// Don't store patch versions
	newestSchema.Patch = 0
	newestSchema.Pre = nil
	newestSchema.Build = nil

	v, err := s.System().GetVersion(ctx)
	if err != nil {
		return err
	}

	if v == "" {
		log.LogInfo("This looks to be a fresh install. Setting database schema version.", "version", newestSchema.String())
		return s.System().SaveVersion(ctx, newestSchema.String())
	}

	currentSchema, err := semver.Parse(v)
	if err != nil {
		return errors.Wrapf(err, "failed to parse schema version %s", v)
	}
	if currentSchema.GT(newestSchema) {
		log.LogWarn("The database schema version is newer than this plugin. Data written by the newer version may not be readable.", "schema", currentSchema.String(), "plugin", newestSchema.String())
	}
	return nil
}

package cli

import (
	"fmt"

	"github.com/samuelfneumann/gorl/checkpoint"
	"github.com/samuelfneumann/gorl/config"
	"github.com/sirupsen/logrus"
)

// latest is the name under which the most recently trained agent of an
// environment is stored
func latest(env string) string {
	return "latest/" + env
}

// openStore opens the agent store of kind at path
func openStore(kind, path string, log logrus.FieldLogger) (checkpoint.Store,
	error) {
	switch kind {
	case config.FileStore:
		return checkpoint.NewFileStore(path), nil
	case config.BadgerStore:
		return checkpoint.NewBadgerStore(path, log)
	default:
		return nil, fmt.Errorf("openStore: unknown store %q", kind)
	}
}

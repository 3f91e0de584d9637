package cmd

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/lhecker/threading/config"
	"github.com/lhecker/threading/database"
)

var (
	// This structure gets (de)initialized in the prerun and postrun hooks of the rootCmd.
	singletons = struct {
		Config   *config.Config
		Database *database.Database
		Logger   *log.Logger
	}{}
)

func isContextCanceledError(err error) bool {
	return errors.Is(err, context.Canceled)
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/gamerec-backend/internal/app"
	"github.com/yungbote/gamerec-backend/internal/config"
	"github.com/yungbote/gamerec-backend/internal/platform/logger"
)

type cliState struct {
	configPath string
	log        *logger.Logger
}

// newRootCmd creates the root gamerecctl command with all subcommands attached.
func newRootCmd() *cobra.Command {
	st := &cliState{}
	cmd := &cobra.Command{
		Use:           "gamerecctl",
		Short:         "Game recommender operator CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&st.configPath, "config", "", "config file (default $GAMEREC_CONFIG_PATH, then ./config.yml)")

	cmd.AddCommand(
		newIndexCmd(st),
		newRecommendCmd(st),
		newPrefsCmd(st),
		newCatalogCmd(st),
	)
	return cmd
}

func (st *cliState) loadConfig() (*config.Config, error) {
	if st.configPath != "" {
		return config.LoadFile(st.configPath)
	}
	return config.Load()
}

func (st *cliState) logger() *logger.Logger {
	if st.log != nil {
		return st.log
	}
	log, err := app.NewLogger()
	if err != nil {
		log = logger.Nop()
	}
	st.log = log
	return log
}

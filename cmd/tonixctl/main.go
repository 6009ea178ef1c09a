// Command tonixctl is the operator tool of the reward service.
package main

import (
	"os"

	"github.com/spf13/cobra"
	log "github.com/sirupsen/logrus"

	"server-tonix-app/config"
	"server-tonix-app/internal/db"
	"server-tonix-app/internal/model"
)

var confDir string

var rootCmd = &cobra.Command{
	Use:           "tonixctl",
	Short:         "Operate the Tonix reward service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.SetPath(confDir)
		config.Init()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&confDir, "conf", "configs/", "config directory")
	rootCmd.AddCommand(migrateCmd, tasksCmd, reconcileCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Errorf("%+v", err)
		os.Exit(1)
	}
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// opening the database runs the migrations
		db.Init()
		defer db.Cli.Close()
		log.Info("schema is up to date")
		return nil
	},
}

func rules() (model.Rules, error) {
	return model.LoadRules(config.Reward)
}

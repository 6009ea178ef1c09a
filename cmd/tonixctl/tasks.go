package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"server-tonix-app/internal/app/reward"
	"server-tonix-app/internal/db"
	"server-tonix-app/internal/model"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage the task catalogue",
}

var tasksSyncCmd = &cobra.Command{
	Use:   "sync FILE",
	Short: "Insert or update the tasks listed in a TOML catalogue",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksSync,
}

func init() {
	tasksCmd.AddCommand(tasksSyncCmd)
}

type catalogue struct {
	Tasks []catalogueTask `toml:"task"`
}

type catalogueTask struct {
	ID            string `toml:"id"`
	Name          string `toml:"name"`
	Description   string `toml:"description"`
	Category      string `toml:"category"`
	Frequency     string `toml:"frequency"`
	Reward        string `toml:"reward"`
	CooldownHours int64  `toml:"cooldown_hours"`
	Active        *bool  `toml:"active"`
	ActionURL     string `toml:"action_url"`
}

// loadCatalogue parses the file; category and frequency are checked by the
// service before anything is written.
func loadCatalogue(path string) ([]model.TaskDefinition, error) {
	var c catalogue
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	out := make([]model.TaskDefinition, 0, len(c.Tasks))
	for _, t := range c.Tasks {
		reward, err := decimal.NewFromString(t.Reward)
		if err != nil {
			return nil, errors.Wrapf(err, "task %q reward", t.ID)
		}
		active := t.Active == nil || *t.Active
		out = append(out, model.TaskDefinition{
			ID:            t.ID,
			Name:          t.Name,
			Description:   t.Description,
			Category:      model.Category(t.Category),
			Frequency:     model.Frequency(t.Frequency),
			Reward:        reward,
			CooldownHours: t.CooldownHours,
			IsActive:      active,
			ActionURL:     t.ActionURL,
		})
	}
	return out, nil
}

func runTasksSync(cmd *cobra.Command, args []string) error {
	tasks, err := loadCatalogue(args[0])
	if err != nil {
		return err
	}
	r, err := rules()
	if err != nil {
		return err
	}
	db.Init()
	defer db.Cli.Close()

	if err = reward.New(db.Cli, r).SyncTasks(cmd.Context(), tasks); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d tasks synced\n", len(tasks))
	return nil
}

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"server-tonix-app/internal/app/reward"
	"server-tonix-app/internal/db"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare cached balances with the ledger",
	Long: `Recomputes the ledger sum of every account and lists the accounts whose
cached balance differs. Exits non-zero when any drift is found.`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func runReconcile(cmd *cobra.Command, args []string) error {
	r, err := rules()
	if err != nil {
		return err
	}
	db.Init()
	defer db.Cli.Close()

	drifts, err := reward.New(db.Cli, r).Reconcile(cmd.Context())
	if err != nil {
		return err
	}
	if len(drifts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "all balances match the ledger")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ACCOUNT\tCACHED\tLEDGER")
	for _, d := range drifts {
		fmt.Fprintf(w, "%d\t%s\t%s\n", d.AccountID, d.Cached, d.Ledger)
	}
	_ = w.Flush()
	return errors.Errorf("%d accounts drifted", len(drifts))
}

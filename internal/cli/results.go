package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/me/dagsim/pkg/model"
)

func newResultsCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "results",
		Short: "Inspect recorded runs",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "Results database path (default ~/.dagsim/dagsim.db)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			runs, total, err := st.ListRuns(context.Background(), model.ListOptions{Limit: 50})
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			if len(runs) == 0 {
				fmt.Println("No recorded runs.")
				return nil
			}

			fmt.Printf("%-42s  %-16s  %-10s  %12s  %s\n", "ID", "ALGORITHM", "STRATEGY", "MAKESPAN", "CREATED")
			for _, run := range runs {
				fmt.Printf("%-42s  %-16s  %-10s  %12.3f  %s\n",
					run.ID, run.Algorithm, run.Strategy, run.Makespan,
					run.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			if len(runs) < total {
				fmt.Printf("\n(%d of %d shown)\n", len(runs), total)
			}
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print the full result dump of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			run, err := st.GetRun(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("load run: %w", err)
			}
			if run == nil {
				return &model.NotFoundError{Resource: "run", Name: args[0]}
			}

			out, err := json.MarshalIndent(run, "", "  ")
			if err != nil {
				return err
			}
			out = append(out, '\n')
			_, err = os.Stdout.Write(out)
			return err
		},
	}

	del := &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.DeleteRun(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, show, del)
	return cmd
}
